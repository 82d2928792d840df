package trail

import (
	"fmt"

	"github.com/charsyam/traildb/format"
	"github.com/charsyam/traildb/internal/options"
)

// EncoderConfig holds the tunables of one encode invocation.
type EncoderConfig struct {
	spillCompression  format.CompressionType
	spillChunkRecords int
	readBufferSize    int
	bigramBudget      int
}

// EncoderOption configures an Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// NewEncoderConfig creates the default configuration: uncompressed spill
// chunks, an 8MiB read-ahead buffer and an unconstrained bigram budget
// (bounded only by the codebook size).
func NewEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		spillCompression:  format.CompressionNone,
		spillChunkRecords: DefaultSpillChunkRecords,
		readBufferSize:    DefaultReadBufferSize,
		bigramBudget:      0,
	}
}

// WithSpillCompression selects the codec for spill-file chunks.
//
// The spill file never leaves the machine, so this only trades CPU for
// temporary disk footprint; S2 is a good choice when the input graph is
// large.
func WithSpillCompression(compression format.CompressionType) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		switch compression {
		case format.CompressionNone, format.CompressionZstd, format.CompressionS2, format.CompressionLZ4:
			cfg.spillCompression = compression
			return nil
		default:
			return fmt.Errorf("invalid spill compression: %s", compression)
		}
	})
}

// WithSpillChunkRecords sets how many grouped records share one spill chunk.
func WithSpillChunkRecords(records int) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		if records <= 0 {
			return fmt.Errorf("invalid spill chunk records: %d", records)
		}
		cfg.spillChunkRecords = records

		return nil
	})
}

// WithReadBufferSize sets the read-ahead buffer used by each spill pass.
func WithReadBufferSize(size int) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		if size <= 0 {
			return fmt.Errorf("invalid read buffer size: %d", size)
		}
		cfg.readBufferSize = size

		return nil
	})
}

// WithBigramBudget caps how many bigrams the gram builder may select.
//
// The effective budget is still bounded by the free codebook slots, so every
// selected bigram keeps a codeword; a smaller cap trades compression ratio
// for a smaller codebook file. Zero restores the default (codebook-bounded)
// budget.
func WithBigramBudget(budget int) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		if budget < 0 {
			return fmt.Errorf("invalid bigram budget: %d", budget)
		}
		cfg.bigramBudget = budget

		return nil
	})
}
