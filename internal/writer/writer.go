// Package writer implements the output formats of an assembled program.
package writer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/uvmasm/internal/program"
	"gopkg.in/yaml.v3"
)

// Writer outputs an assembled program.
type Writer struct {
	app    *program.Program
	writer io.Writer
}

// Listing is the YAML document written by WriteListing.
type Listing struct {
	Size         int            `yaml:"size"`
	Instructions []ListingEntry `yaml:"instructions"`
}

// ListingEntry describes a single instruction of a listing.
type ListingEntry struct {
	Line     int     `yaml:"line"`
	Mnemonic string  `yaml:"mnemonic"`
	Operands []int64 `yaml:"operands,flow"`
	Word     string  `yaml:"word"`
	Bytes    string  `yaml:"bytes"`
}

// New creates a new writer.
func New(app *program.Program, writer io.Writer) *Writer {
	return &Writer{
		app:    app,
		writer: writer,
	}
}

// WriteBinary writes all instruction words in program order without any header
// and returns the number of bytes written.
func (w Writer) WriteBinary() (int, error) {
	var written int
	for _, ins := range w.app.Instructions {
		n, err := w.writer.Write(ins.Word[:])
		written += n
		if err != nil {
			return written, fmt.Errorf("writing instruction of line %d: %w", ins.Line, err)
		}
	}
	return written, nil
}

// WriteTrace writes one line per instruction containing the mnemonic, the operands
// as parsed and the encoded bytes.
func (w Writer) WriteTrace() error {
	for _, ins := range w.app.Instructions {
		operands := make([]string, len(ins.Operands))
		for i, operand := range ins.Operands {
			operands[i] = strconv.FormatInt(operand, 10)
		}

		if _, err := fmt.Fprintf(w.writer, "%s: (%s) → %s\n",
			ins.Name(), strings.Join(operands, ", "), hexBytes(ins.Word[:], "0x", ", ")); err != nil {
			return fmt.Errorf("writing trace line: %w", err)
		}
	}
	return nil
}

// WriteListing writes the program as YAML document.
func (w Writer) WriteListing() error {
	listing := Listing{
		Size:         w.app.Size(),
		Instructions: make([]ListingEntry, 0, w.app.Len()),
	}
	for _, ins := range w.app.Instructions {
		listing.Instructions = append(listing.Instructions, ListingEntry{
			Line:     ins.Line,
			Mnemonic: ins.Name(),
			Operands: ins.Operands,
			Word:     ins.Word.String(),
			Bytes:    hexBytes(ins.Word[:], "", " "),
		})
	}

	enc := yaml.NewEncoder(w.writer)
	enc.SetIndent(2)
	if err := enc.Encode(listing); err != nil {
		return fmt.Errorf("encoding listing: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing listing encoder: %w", err)
	}
	return nil
}

func hexBytes(data []byte, prefix, separator string) string {
	buf := &strings.Builder{}
	for i, b := range data {
		if i > 0 {
			buf.WriteString(separator)
		}
		fmt.Fprintf(buf, "%s%02X", prefix, b)
	}
	return buf.String()
}
