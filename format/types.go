// Package format defines the packed item and gram representations shared by
// every stage of the trail encoder, plus the enums used to configure it.
//
// An Item packs one (field, value) pair into a u64: the field id occupies the
// low 8 bits and the value id the 24 bits above it, so a single item always
// fits in 32 bits. Field 0 is reserved for the timestamp delta.
//
// A Gram is either one item (unigram, low 32 bits) or two items from
// different fields (bigram, second item in the high 32 bits). Bigrams store
// the lower-field item in the low half; since at most one item per event has
// field 0, the high half of a bigram is never zero, which is what
// distinguishes the two kinds.
package format

import "math/bits"

type (
	// Item is one packed (field, value) pair.
	Item uint64
	// Gram is a unigram or bigram treated as one entropy-coder symbol.
	Gram uint64

	// CompressionType selects the spill-chunk codec.
	CompressionType uint8
)

const (
	// FieldBits is the width of the field id inside an item.
	FieldBits = 8
	// ValueBits is the width of the value id inside an item.
	ValueBits = 24

	// TimestampField is the reserved field id carrying the encoded delta.
	TimestampField = 0

	// MaxFields is the largest usable field id.
	MaxFields = 1<<FieldBits - 1
	// MaxValue is the largest usable value id within one field.
	MaxValue = 1<<ValueBits - 1

	// MaxTimestampDelta is the exclusive bound on the per-event delta; deltas
	// of this size or larger mark the record invalid.
	MaxTimestampDelta = 1 << ValueBits

	// MaxInvalidRatio is the tolerated fraction of invalid records after
	// grouping.
	MaxInvalidRatio = 0.005

	// MaxTrailsSize caps the trails file; TOC offsets are 32-bit.
	MaxTrailsSize = 1<<32 - 1
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone stores spill chunks raw.
	CompressionZstd CompressionType = 0x2 // CompressionZstd uses Zstandard.
	CompressionS2   CompressionType = 0x3 // CompressionS2 uses S2.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 uses LZ4.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// NewItem packs a field id and value id into an item.
// Callers validate the ranges; out-of-range bits are masked off.
func NewItem(field uint32, value uint32) Item {
	return Item(field&MaxFields) | Item(value&MaxValue)<<FieldBits
}

// Field extracts the field id of an item.
func (it Item) Field() uint32 {
	return uint32(it) & MaxFields
}

// Value extracts the value id of an item.
func (it Item) Value() uint32 {
	return uint32(it>>FieldBits) & MaxValue
}

// Unigram wraps a single item as a gram.
func Unigram(it Item) Gram {
	return Gram(uint32(it))
}

// Bigram packs two items from different fields as one gram.
// The item with the smaller field id goes into the low half so that the
// covering of a timestamp item always sits first.
func Bigram(a, b Item) Gram {
	if b.Field() < a.Field() {
		a, b = b, a
	}

	return Gram(uint32(a)) | Gram(uint32(b))<<32
}

// IsBigram reports whether the gram packs two items.
func (g Gram) IsBigram() bool {
	return g>>32 != 0
}

// First returns the low-half item of the gram.
func (g Gram) First() Item {
	return Item(uint32(g))
}

// Second returns the high-half item of a bigram, or 0 for a unigram.
func (g Gram) Second() Item {
	return Item(uint32(g >> 32))
}

// BitsFor returns the number of bits needed to hold values in [0, maxValue].
// Zero still needs one bit on the wire.
func BitsFor(maxValue uint64) uint8 {
	n := bits.Len64(maxValue)
	if n == 0 {
		return 1
	}

	return uint8(n)
}
