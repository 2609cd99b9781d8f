// Package parser converts comma separated program records into assembled instructions.
package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/uvmasm/internal/encoder"
	"github.com/retroenv/uvmasm/internal/opcode"
	"github.com/retroenv/uvmasm/internal/program"
)

const commentMarker = "#"

var (
	// ErrArityMismatch is returned for a record with a wrong number of operands.
	ErrArityMismatch = errors.New("arity mismatch")
	// ErrNonIntegerArgument is returned for an operand that is not a decimal integer.
	ErrNonIntegerArgument = errors.New("non-integer argument")
	// ErrMalformedRecord is returned for a line that can not be split into fields.
	ErrMalformedRecord = errors.New("malformed record")
)

var encoders = map[*opcode.Opcode]func(operands []int64) encoder.Word{
	opcode.Load: func(operands []int64) encoder.Word {
		return encoder.EncodeLoad(operands[0], operands[1])
	},
	opcode.Read: func(operands []int64) encoder.Word {
		return encoder.EncodeRead(operands[0], operands[1], operands[2])
	},
	opcode.Write: func(operands []int64) encoder.Word {
		return encoder.EncodeWrite(operands[0], operands[1])
	},
	opcode.Add: func(operands []int64) encoder.Word {
		return encoder.EncodeAdd(operands[0], operands[1], operands[2])
	},
}

// LineError wraps an error with the source line that caused it.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Options controls the parser behavior.
type Options struct {
	Strict    bool // reject operands that do not fit their field instead of truncating them
	KeepGoing bool // report all faulty lines instead of stopping at the first one
}

// Parser converts program text into a program.
type Parser struct {
	logger  *log.Logger
	options Options
}

// New creates a new parser.
func New(logger *log.Logger, options Options) *Parser {
	return &Parser{
		logger:  logger,
		options: options,
	}
}

// Parse reads all records from the reader and returns the assembled program.
// No program is returned if any record is faulty.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (*program.Program, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1

	prog := program.New()
	var errs []error

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parsing cancelled: %w", err)
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// the reader position is undefined after a syntax error, continuing is not possible
			return nil, readError(err, errs)
		}

		line, _ := reader.FieldPos(0)
		ins, skip, err := p.parseRecord(record, line)
		if err != nil {
			err = &LineError{Line: line, Err: err}
			if !p.options.KeepGoing {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		if skip {
			continue
		}

		p.logger.Debug("Assembled instruction",
			log.Int("line", line),
			log.String("mnemonic", ins.Name()),
			log.String("word", ins.Word.String()))
		prog.Add(ins)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return prog, nil
}

// parseRecord assembles a single record. Blank and comment records are reported as skipped.
func (p *Parser) parseRecord(record []string, line int) (program.Instruction, bool, error) {
	if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
		return program.Instruction{}, true, nil
	}
	// quoted first fields bypass the comment handling of the csv reader
	if strings.HasPrefix(record[0], commentMarker) {
		return program.Instruction{}, true, nil
	}

	mnemonic := strings.ToUpper(strings.TrimSpace(record[0]))

	operands := make([]int64, 0, len(record)-1)
	for i, field := range record[1:] {
		value, err := parseOperand(field)
		if err != nil {
			return program.Instruction{}, false, fmt.Errorf("%w: operand %d of %s is '%s': %w",
				ErrNonIntegerArgument, i+1, mnemonic, field, err)
		}
		operands = append(operands, value)
	}

	op, err := opcode.Lookup(mnemonic)
	if err != nil {
		return program.Instruction{}, false, err
	}

	if len(operands) != op.Arity() {
		return program.Instruction{}, false, fmt.Errorf("%w: %s expects %d operands but got %d",
			ErrArityMismatch, op.Name, op.Arity(), len(operands))
	}

	if p.options.Strict {
		if err := encoder.Validate(op, operands); err != nil {
			return program.Instruction{}, false, fmt.Errorf("validating %s: %w", op.Name, err)
		}
	}

	encode, ok := encoders[op]
	if !ok {
		return program.Instruction{}, false, fmt.Errorf("%w '%s'", opcode.ErrUnknownOpcode, op.Name)
	}

	ins := program.Instruction{
		Opcode:   op,
		Operands: operands,
		Word:     encode(operands),
		Line:     line,
	}
	return ins, false, nil
}

// parseOperand parses a decimal integer with an optional sign, surrounding whitespace is ignored.
func parseOperand(field string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(field), 10, 64)
}

func readError(err error, previous []error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		err = &LineError{
			Line: parseErr.StartLine,
			Err:  fmt.Errorf("%w: %w", ErrMalformedRecord, parseErr.Err),
		}
	} else {
		err = fmt.Errorf("reading record: %w", err)
	}

	if len(previous) == 0 {
		return err
	}
	return errors.Join(append(previous, err)...)
}
