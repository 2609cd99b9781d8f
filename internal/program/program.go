// Package program represents an assembled program for the target machine.
package program

import (
	"github.com/retroenv/uvmasm/internal/encoder"
	"github.com/retroenv/uvmasm/internal/opcode"
)

// Instruction is a single assembled source record.
type Instruction struct {
	Opcode   *opcode.Opcode
	Operands []int64 // raw operand values as parsed, before masking
	Word     encoder.Word
	Line     int // 1-based line number of the source record
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	return i.Opcode.Name
}

// Program is the ordered list of instructions of an assembly run.
type Program struct {
	Instructions []Instruction
}

// New creates a new empty program.
func New() *Program {
	return &Program{}
}

// Add appends an instruction to the end of the program.
func (p *Program) Add(ins Instruction) {
	p.Instructions = append(p.Instructions, ins)
}

// Len returns the number of instructions of the program.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// Size returns the size of the encoded program in bytes.
func (p *Program) Size() int {
	return len(p.Instructions) * encoder.WordSize
}

// Bytes returns the encoded program, all words in program order.
func (p *Program) Bytes() []byte {
	data := make([]byte, 0, p.Size())
	for _, ins := range p.Instructions {
		data = append(data, ins.Word[:]...)
	}
	return data
}
