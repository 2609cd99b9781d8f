package fileprocessor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/uvmasm/internal/loader"
	"github.com/retroenv/uvmasm/internal/options"
	"github.com/retroenv/uvmasm/internal/parser"
)

func setupFiles(t *testing.T, source string) options.Program {
	t.Helper()
	dir := t.TempDir()

	opts := options.Program{}
	opts.Input = filepath.Join(dir, "program.csv")
	opts.Output = filepath.Join(dir, "program.bin")
	opts.Quiet = true

	if err := os.WriteFile(opts.Input, []byte(source), 0600); err != nil {
		t.Fatalf("Failed to create input file: %v", err)
	}
	return opts
}

func TestProcessFile(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := setupFiles(t, "LOAD,5,100\nREAD,1,2,3\nWRITE,4,500\nADD,1,10,20\n")
	opts.Verify = true

	var stdout bytes.Buffer
	err := ProcessFile(context.Background(), logger, opts, &stdout)
	assert.NoError(t, err)
	assert.Equal(t, 0, stdout.Len())

	data, err := os.ReadFile(opts.Output)
	assert.NoError(t, err)
	assert.True(t, bytes.Equal([]byte{
		0x5D, 0x20, 0x03, 0x00, 0x00, 0x00,
		0x10, 0x10, 0x0C, 0x00, 0x00, 0x00,
		0x48, 0xA0, 0x0F, 0x00, 0x00, 0x00,
		0x11, 0x50, 0x00, 0x40, 0x01, 0x00,
	}, data))

	// no temporary files are left behind
	entries, err := os.ReadDir(filepath.Dir(opts.Output))
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestProcessFileTrace(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := setupFiles(t, "WRITE,4,500\n")
	opts.Trace = true

	var stdout bytes.Buffer
	err := ProcessFile(context.Background(), logger, opts, &stdout)
	assert.NoError(t, err)
	assert.Equal(t, "WRITE: (4, 500) → 0x48, 0xA0, 0x0F, 0x00, 0x00, 0x00\n", stdout.String())
}

func TestProcessFileCommentsOnly(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := setupFiles(t, "# nothing to assemble\n\n")

	err := ProcessFile(context.Background(), logger, opts, &bytes.Buffer{})
	assert.NoError(t, err)

	info, err := os.Stat(opts.Output)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestProcessFileListing(t *testing.T) {
	logger := log.NewTestLogger(t)
	opts := setupFiles(t, "LOAD,5,100\n")
	opts.Listing = filepath.Join(filepath.Dir(opts.Output), "program.yaml")

	err := ProcessFile(context.Background(), logger, opts, &bytes.Buffer{})
	assert.NoError(t, err)

	listing, err := os.ReadFile(opts.Listing)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(listing), "mnemonic: LOAD"))
	assert.True(t, strings.Contains(string(listing), "5D 20 03 00 00 00"))
}

func TestProcessFileErrors(t *testing.T) {
	logger := log.NewTestLogger(t)

	t.Run("parse error writes no output", func(t *testing.T) {
		opts := setupFiles(t, "LOAD,5,100\nLOAD,5\n")
		// an existing output file stays untouched
		assert.NoError(t, os.WriteFile(opts.Output, []byte("previous"), 0600))

		err := ProcessFile(context.Background(), logger, opts, &bytes.Buffer{})
		assert.True(t, errors.Is(err, parser.ErrArityMismatch))

		data, err := os.ReadFile(opts.Output)
		assert.NoError(t, err)
		assert.Equal(t, "previous", string(data))
	})

	t.Run("missing input", func(t *testing.T) {
		opts := setupFiles(t, "")
		opts.Input = opts.Input + ".missing"

		err := ProcessFile(context.Background(), logger, opts, &bytes.Buffer{})
		assert.True(t, errors.Is(err, loader.ErrInputNotFound))

		_, err = os.Stat(opts.Output)
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("missing output option", func(t *testing.T) {
		opts := setupFiles(t, "LOAD,5,100\n")
		opts.Output = ""

		err := ProcessFile(context.Background(), logger, opts, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("output directory does not exist", func(t *testing.T) {
		opts := setupFiles(t, "LOAD,5,100\n")
		opts.Output = filepath.Join(t.TempDir(), "missing", "program.bin")

		err := ProcessFile(context.Background(), logger, opts, &bytes.Buffer{})
		assert.ErrorContains(t, err, "writing binary file")
	})
}
