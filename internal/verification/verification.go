// Package verification verifies that the written binary file matches the assembled program.
package verification

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/uvmasm/internal/encoder"
	"github.com/retroenv/uvmasm/internal/options"
	"github.com/retroenv/uvmasm/internal/program"
	"lukechampine.com/blake3"
)

// maxReportedMismatches limits the logged mismatching offsets.
const maxReportedMismatches = 10

// VerifyOutput reads back the output file and compares it with the words of the program.
func VerifyOutput(logger *log.Logger, options options.Program, app *program.Program) error {
	if options.Output == "" {
		return errors.New("can not verify without output file")
	}

	destination, err := os.ReadFile(options.Output)
	if err != nil {
		return fmt.Errorf("reading output file for comparison: %w", err)
	}

	if len(destination)%encoder.WordSize != 0 {
		return fmt.Errorf("output size %d is not a multiple of the word size %d", len(destination), encoder.WordSize)
	}

	if err := checkBufferEqual(logger, app.Bytes(), destination); err != nil {
		return fmt.Errorf("output file mismatch: %w", err)
	}

	logger.Debug("Output file checksum",
		log.String("file", options.Output),
		log.String("blake3", Checksum(destination)))
	return nil
}

// Checksum returns the hex encoded BLAKE3-256 digest of the data.
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxReportedMismatches {
			logger.Error("Offset mismatch",
				log.Int("instruction", i/encoder.WordSize),
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
