// Package encoder packs instruction operands into 48-bit little-endian machine words.
//
// Every operand is masked to the width of its field before it is shifted into place,
// values that do not fit are truncated to their low-order bits. Validate can be used
// to detect such values before encoding.
package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/retroenv/uvmasm/internal/opcode"
)

// WordSize is the size of an encoded instruction in bytes.
const WordSize = 6

// ErrOperandOutOfRange is returned by Validate for an operand that does not fit its field.
var ErrOperandOutOfRange = errors.New("operand out of range")

// Word is an encoded instruction, stored least significant byte first.
type Word [WordSize]byte

// Uint64 returns the numeric value of the word.
func (w Word) Uint64() uint64 {
	var buf [8]byte
	copy(buf[:], w[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// Bytes returns the encoded bytes of the word.
func (w Word) Bytes() []byte {
	b := w
	return b[:]
}

// String returns the word value as 12 digit hex number.
func (w Word) String() string {
	return fmt.Sprintf("0x%012X", w.Uint64())
}

// EncodeLoad encodes a LOAD of a constant into a register.
func EncodeLoad(register, constant int64) Word {
	return pack(opcode.Load, register, constant)
}

// EncodeRead encodes a READ from the address in addrRegister plus offset into dstRegister.
func EncodeRead(offset, addrRegister, dstRegister int64) Word {
	return pack(opcode.Read, offset, addrRegister, dstRegister)
}

// EncodeWrite encodes a WRITE of srcRegister to a memory address.
func EncodeWrite(srcRegister, memAddress int64) Word {
	return pack(opcode.Write, srcRegister, memAddress)
}

// EncodeAdd encodes an ADD of the values at address1 and address2 into dstRegister.
func EncodeAdd(dstRegister, address1, address2 int64) Word {
	return pack(opcode.Add, dstRegister, address1, address2)
}

// Validate checks that every operand is non-negative and fits into its field.
// The operand count has to match the arity of the opcode.
func Validate(op *opcode.Opcode, operands []int64) error {
	for i, field := range op.Fields {
		value := operands[i]
		if value < 0 || uint64(value) > field.Mask() {
			return fmt.Errorf("%w: %s %d does not fit into %d bits",
				ErrOperandOutOfRange, field.Name, value, field.Width)
		}
	}
	return nil
}

// pack combines the opcode id and the masked operands into a word. Negative values
// are masked in their two's complement representation.
func pack(op *opcode.Opcode, operands ...int64) Word {
	value := uint64(op.ID) & (1<<opcode.IDBits - 1)
	for i, field := range op.Fields {
		value |= (uint64(operands[i]) & field.Mask()) << field.Offset
	}

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)

	var w Word
	copy(w[:], buf[:WordSize])
	return w
}
