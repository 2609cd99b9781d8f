// Package fileprocessor assembles a program file and writes the output files.
package fileprocessor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/uvmasm/internal/options"
	"github.com/retroenv/uvmasm/internal/pipeline"
	"github.com/retroenv/uvmasm/internal/program"
	"github.com/retroenv/uvmasm/internal/verification"
	"github.com/retroenv/uvmasm/internal/writer"
	"github.com/tebeka/atexit"
)

const outputFileMode = 0o644

// ProcessFile handles the complete file processing workflow. The binary is assembled
// in memory first, no output file is created if the program contains errors.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, stdout io.Writer) error {
	if opts.Output == "" {
		return errors.New("no output file specified")
	}

	var buf bytes.Buffer
	pipe := pipeline.New(logger)
	app, err := pipe.Execute(ctx, opts, &buf, stdout)
	if err != nil {
		return fmt.Errorf("assembling: %w", err)
	}

	if err := writeFileAtomic(opts.Output, buf.Bytes()); err != nil {
		return fmt.Errorf("writing binary file: %w", err)
	}

	if opts.Listing != "" {
		if err := writeListing(opts.Listing, app); err != nil {
			return fmt.Errorf("writing listing: %w", err)
		}
	}

	if opts.Verify {
		if err := verification.VerifyOutput(logger, opts, app); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		logger.Info("Verification successful")
	}

	logger.Info("Binary file written",
		log.String("file", opts.Output),
		log.Int("size", buf.Len()),
		log.Int("instructions", app.Len()),
		log.String("blake3", verification.Checksum(buf.Bytes())))
	return nil
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info("uvmasm", log.String("version", buildinfo.Version(version, commit, date)))
}

// writeFileAtomic writes the data to a temporary file in the destination directory
// and renames it to the destination name once all data is synced to disk.
func writeFileAtomic(name string, data []byte) error {
	file, err := os.CreateTemp(filepath.Dir(name), filepath.Base(name)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := file.Name()
	atexit.Register(func() {
		_ = os.Remove(tmpName)
	})

	if err := writeAndClose(file, data); err != nil {
		_ = os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, name); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming temp file to %s: %w", name, err)
	}
	return nil
}

func writeAndClose(file *os.File, data []byte) error {
	if err := file.Chmod(outputFileMode); err != nil {
		_ = file.Close()
		return fmt.Errorf("setting file mode of %s: %w", file.Name(), err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing file %s: %w", file.Name(), err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return fmt.Errorf("syncing file %s: %w", file.Name(), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", file.Name(), err)
	}
	return nil
}

func writeListing(name string, app *program.Program) error {
	file, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("creating listing file %s: %w", name, err)
	}
	defer func() { _ = file.Close() }()

	if err := writer.New(app, file).WriteListing(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing listing file %s: %w", name, err)
	}
	return nil
}
