// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/uvmasm/internal/options"
	"github.com/retroenv/uvmasm/internal/parser"
)

// Process exit codes.
const (
	ExitSuccess    = 0
	ExitFailure    = 1 // usage errors, missing input file and I/O errors
	ExitParseError = 2 // the program contains faulty records
)

// ParseFlags parses command line flags and returns the program options.
// Options can be passed before and after the input file.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if len(args) > 1 {
		input := args[0]
		if err := flags.Parse(args[1:]); err != nil {
			return opts, &UsageError{flags: flags}
		}
		args = append([]string{input}, flags.Args()...)
	}

	if err := validateArgs(flags, args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	if opts.Output == "" {
		return opts, &UsageError{flags: flags, msg: "the output file has to be specified using -o"}
	}

	return opts, nil
}

// ExitCode returns the process exit code for the result of an assembly run.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var lineErr *parser.LineError
	if errors.As(err, &lineErr) {
		return ExitParseError
	}
	return ExitFailure
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage message and all supported flags.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: uvmasm [options] <program file> -o <binary file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks that only a single input file is passed.
func validateArgs(flags *flag.FlagSet, args []string) error {
	if len(args) > 1 {
		return &UsageError{
			flags: flags,
			msg:   fmt.Sprintf("unexpected argument %s found, only a single program file can be assembled", args[1]),
		}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output binary file (required)")
	flags.StringVar(&opts.Output, "output", "", "name of the output binary file (required)")
	flags.StringVar(&opts.Listing, "listing", "", "name of a YAML listing file to write")
	flags.BoolVar(&opts.Trace, "test", false, "print the assembled instructions and their bytes before writing the binary file")
	flags.BoolVar(&opts.Strict, "strict", false, "reject operands that do not fit their field instead of truncating them")
	flags.BoolVar(&opts.KeepGoing, "keep-going", false, "report all faulty lines instead of stopping at the first one")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the written binary file")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
