// Package pipeline orchestrates the assembly workflow stages.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/uvmasm/internal/loader"
	"github.com/retroenv/uvmasm/internal/options"
	"github.com/retroenv/uvmasm/internal/parser"
	"github.com/retroenv/uvmasm/internal/program"
	"github.com/retroenv/uvmasm/internal/writer"
)

// Pipeline orchestrates the complete assembly workflow.
type Pipeline struct {
	logger *log.Logger
	loader *loader.Loader
}

// New creates a new assembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
		loader: loader.New(),
	}
}

// Execute runs the complete assembly pipeline. The trace is written to the trace writer
// if enabled in the options, the binary output is written to the output writer.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, output, trace io.Writer) (*program.Program, error) {
	source, err := p.loader.Load(opts)
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	return p.ExecuteWithSource(ctx, source, opts, output, trace)
}

// ExecuteWithSource runs the assembly pipeline with a pre-loaded program source.
// This is useful for testing and programmatic usage where the source is already in memory.
func (p *Pipeline) ExecuteWithSource(ctx context.Context, source []byte, opts options.Program,
	output, trace io.Writer) (*program.Program, error) {

	p.printInfo(opts, source)

	prs := parser.New(p.logger, opts.Parser())
	app, err := prs.Parse(ctx, bytes.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parsing program: %w", err)
	}

	w := writer.New(app, output)
	if opts.Trace {
		tw := writer.New(app, trace)
		if err := tw.WriteTrace(); err != nil {
			return nil, fmt.Errorf("writing trace: %w", err)
		}
	}

	if _, err := w.WriteBinary(); err != nil {
		return nil, fmt.Errorf("writing binary: %w", err)
	}

	p.logger.Debug("Program assembled",
		log.Int("instructions", app.Len()),
		log.Int("size", app.Size()))
	return app, nil
}

// printInfo prints information about the program being processed.
func (p *Pipeline) printInfo(opts options.Program, source []byte) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing program",
		log.String("file", opts.Input),
		log.Int("bytes", len(source)),
	)
	if opts.Strict {
		p.logger.Info("Strict operand range checking enabled")
	}
}
