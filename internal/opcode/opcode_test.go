package opcode

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		mnemonic string
		id       uint8
		arity    int
	}{
		{"LOAD", 13, 2},
		{"READ", 0, 3},
		{"WRITE", 8, 2},
		{"ADD", 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.mnemonic, func(t *testing.T) {
			op, err := Lookup(tt.mnemonic)
			assert.NoError(t, err)
			assert.Equal(t, tt.mnemonic, op.Name)
			assert.Equal(t, tt.id, op.ID)
			assert.Equal(t, tt.arity, op.Arity())
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	for _, mnemonic := range []string{"MUL", "", "load", "LOADX"} {
		op, err := Lookup(mnemonic)
		assert.Nil(t, op)
		assert.True(t, errors.Is(err, ErrUnknownOpcode))
	}
}

func TestLayoutsFitWord(t *testing.T) {
	usedBits := map[string]uint{
		"LOAD":  33,
		"READ":  25,
		"WRITE": 28,
		"ADD":   45,
	}

	for _, op := range All() {
		t.Run(op.Name, func(t *testing.T) {
			assert.True(t, op.ID < 1<<IDBits)

			// fields follow each other without gaps or overlaps
			next := uint(IDBits)
			for _, field := range op.Fields {
				assert.Equal(t, next, field.Offset, field.Name)
				next = field.Offset + field.Width
			}
			assert.Equal(t, usedBits[op.Name], next)
			assert.True(t, next <= 48)
		})
	}
}

func TestAllReturnsCopy(t *testing.T) {
	ops := All()
	ops[0] = nil

	assert.Equal(t, Load, All()[0])
}

func TestFieldMask(t *testing.T) {
	assert.Equal(t, uint64(0x7F), Field{Width: 7}.Mask())
	assert.Equal(t, uint64(0x1FFFF), Field{Width: 17}.Mask())
	assert.Equal(t, uint64(0x3FFFFF), Field{Width: 22}.Mask())
}
