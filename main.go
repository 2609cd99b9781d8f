// Package main implements the main entry point for an assembler for a 48-bit word virtual machine
package main

import (
	"context"
	"errors"
	"os"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/uvmasm/internal/cli"
	"github.com/retroenv/uvmasm/internal/config"
	"github.com/retroenv/uvmasm/internal/fileprocessor"
	"github.com/tebeka/atexit"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fileprocessor.PrintBanner(logger, opts, version, commit, date)
			if msg := usageErr.Error(); msg != "" {
				logger.Error(msg)
			}
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		atexit.Exit(cli.ExitFailure)
	}

	logger := config.CreateLogger(opts)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	if err := fileprocessor.ProcessFile(ctx, logger, opts, os.Stdout); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
		} else {
			logger.Error("Assembling failed", log.Err(err))
		}
		atexit.Exit(cli.ExitCode(err))
	}

	atexit.Exit(cli.ExitSuccess)
}
