// Package traildb builds a compact, immutable on-disk representation of
// per-actor event trails.
//
// Each actor (cookie) owns a time-ordered sequence of events carrying
// (field, value) pairs. The encoder groups and delta-encodes events per
// actor, stores only field values that changed between adjacent events,
// merges frequently co-occurring values into bigrams, and entropy-codes the
// residual stream with a corpus-wide Huffman codebook. One encode produces
// three artifacts under the chosen root:
//
//   - trails.data: a TOC of per-actor byte offsets followed by the
//     bit-packed trails
//   - trails.codebook: the serialized Huffman codebook and field widths
//   - info: one ASCII line of corpus counters
//
// # Basic Usage
//
// Building an event graph and encoding it:
//
//	import "github.com/charsyam/traildb"
//
//	b, _ := traildb.NewBuilder([]string{"action", "page"})
//	b.AddEvent("user-1", 100, []string{"click", "home"})
//	b.AddEvent("user-1", 160, []string{"click", "search"})
//	b.AddEvent("user-2", 120, []string{"view", "home"})
//
//	input, _ := b.Finish()
//	if err := traildb.Encode(input, "/data/trails"); err != nil {
//	    log.Fatal(err)
//	}
//
// Spill compression and buffer sizes are tunable through encoder options:
//
//	err := traildb.Encode(input, root,
//	    trail.WithSpillCompression(format.CompressionS2))
//
// # Package Structure
//
// This package provides thin wrappers over the builder and trail packages,
// which expose the full pipeline for fine-grained control. The encoding and
// section packages hold the entropy-coding primitives and file layouts.
package traildb

import (
	"github.com/charsyam/traildb/builder"
	"github.com/charsyam/traildb/internal/hash"
	"github.com/charsyam/traildb/trail"
)

// NewBuilder creates an event-graph builder for the given value fields.
func NewBuilder(fieldNames []string) (*builder.Builder, error) {
	return builder.NewBuilder(fieldNames)
}

// Encode runs the full encoder pipeline, writing trails.data,
// trails.codebook and info under root.
//
// The input's event array is consumed; see trail.Encoder.Encode for the
// full contract.
func Encode(input *trail.Input, root string, opts ...trail.EncoderOption) error {
	enc, err := trail.NewEncoder(opts...)
	if err != nil {
		return err
	}

	return enc.Encode(input, root)
}

// CookieID computes the 64-bit identity of a cookie key.
//
// It is the same xxHash64 the builder interns cookies with, exposed for
// applications that index trails by cookie key.
func CookieID(key string) uint64 {
	return hash.ID(key)
}
