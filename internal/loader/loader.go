// Package loader handles program file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/retroenv/uvmasm/internal/options"
)

// ErrInputNotFound is returned when the input file does not exist.
var ErrInputNotFound = errors.New("input file not found")

// Loader handles loading program files from disk.
type Loader struct{}

// New creates a new program file loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the complete input file into memory.
func (l *Loader) Load(opts options.Program) ([]byte, error) {
	if _, err := os.Stat(opts.Input); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, opts.Input)
		}
		return nil, fmt.Errorf("checking file %s: %w", opts.Input, err)
	}

	file, err := os.Open(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", opts.Input, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	return data, nil
}
