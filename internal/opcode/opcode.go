// Package opcode contains the instruction set of the target machine: the mnemonics,
// their 4-bit opcode ids and the bit layout of their operand fields.
package opcode

import (
	"errors"
	"fmt"
)

// IDBits is the width of the opcode id that occupies the lowest bits of every word.
const IDBits = 4

// ErrUnknownOpcode is returned for a mnemonic that is not part of the instruction set.
var ErrUnknownOpcode = errors.New("unknown opcode")

// Field describes the position of an operand inside an instruction word.
type Field struct {
	Name   string
	Offset uint // bit offset of the lowest field bit
	Width  uint // number of bits
}

// Mask returns the bit mask that limits a value to the width of the field.
func (f Field) Mask() uint64 {
	return 1<<f.Width - 1
}

// Opcode defines an instruction of the target machine.
type Opcode struct {
	Name   string
	ID     uint8
	Fields []Field // operand fields in source operand order
}

// Arity returns the number of operands the instruction expects.
func (o *Opcode) Arity() int {
	return len(o.Fields)
}

// String returns the mnemonic of the opcode.
func (o *Opcode) String() string {
	return o.Name
}

// Load loads a 22-bit constant into a register.
var Load = &Opcode{
	Name: "LOAD",
	ID:   0xD,
	Fields: []Field{
		{Name: "register", Offset: 4, Width: 7},
		{Name: "constant", Offset: 11, Width: 22},
	},
}

// Read reads memory addressed by a register plus offset into a register.
var Read = &Opcode{
	Name: "READ",
	ID:   0x0,
	Fields: []Field{
		{Name: "offset", Offset: 4, Width: 7},
		{Name: "address register", Offset: 11, Width: 7},
		{Name: "destination register", Offset: 18, Width: 7},
	},
}

// Write writes a register to a memory address.
var Write = &Opcode{
	Name: "WRITE",
	ID:   0x8,
	Fields: []Field{
		{Name: "source register", Offset: 4, Width: 7},
		{Name: "memory address", Offset: 11, Width: 17},
	},
}

// Add adds the values at two memory addresses into a register.
var Add = &Opcode{
	Name: "ADD",
	ID:   0x1,
	Fields: []Field{
		{Name: "destination register", Offset: 4, Width: 7},
		{Name: "address 1", Offset: 11, Width: 17},
		{Name: "address 2", Offset: 28, Width: 17},
	},
}

// ordered in the way the instruction set is documented.
var all = []*Opcode{Load, Read, Write, Add}

var byName = func() map[string]*Opcode {
	m := make(map[string]*Opcode, len(all))
	for _, op := range all {
		m[op.Name] = op
	}
	return m
}()

// Lookup returns the opcode for an uppercase mnemonic.
func Lookup(mnemonic string) (*Opcode, error) {
	op, ok := byName[mnemonic]
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownOpcode, mnemonic)
	}
	return op, nil
}

// All returns all opcodes of the instruction set.
func All() []*Opcode {
	ops := make([]*Opcode, len(all))
	copy(ops, all)
	return ops
}
