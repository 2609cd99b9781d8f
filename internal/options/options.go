// Package options contains the program options.
package options

import "github.com/retroenv/uvmasm/internal/parser"

// Parameters contains file path options.
type Parameters struct {
	Input   string `arg:"positional" usage:"program file to assemble"`
	Output  string `flag:"o,output" usage:"output binary file"`
	Listing string `flag:"listing" usage:"YAML listing file to write"`
}

// Flags contains behavior options.
type Flags struct {
	Trace     bool `flag:"test" usage:"print the assembled instructions and their bytes"`
	Strict    bool `flag:"strict" usage:"reject operands that do not fit their field"`
	KeepGoing bool `flag:"keep-going" usage:"report all faulty lines instead of the first"`
	Verify    bool `flag:"verify" usage:"verify the written binary file"`
	Debug     bool `flag:"debug" usage:"enable debug logging"`
	Quiet     bool `flag:"q" usage:"quiet mode"`
}

// Program options of the assembler.
type Program struct {
	Parameters
	Flags
}

// Parser returns the options for the program parser.
func (p Program) Parser() parser.Options {
	return parser.Options{
		Strict:    p.Strict,
		KeepGoing: p.KeepGoing,
	}
}
