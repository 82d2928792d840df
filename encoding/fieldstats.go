package encoding

import (
	"github.com/charsyam/traildb/format"
)

// FieldStats records, per field, the bit width of a literal value written
// after an escape code.
//
// Field 0 (the timestamp field) is sized from the largest delta seen during
// grouping; every other field from its value cardinality. Widths are fixed
// for the lifetime of one encode and are serialized into the codebook file so
// the decode side sizes literals identically.
type FieldStats struct {
	bits []uint8
}

// NewFieldStats computes literal widths from the per-field cardinalities and
// the maximum timestamp delta.
//
// fieldCardinalities[f] is the maximum value id used in field f; index 0 is
// ignored in favor of maxTimestampDelta. Fields beyond len(fieldCardinalities)
// get the full value width.
func NewFieldStats(fieldCardinalities []uint64, numFields uint32, maxTimestampDelta uint32) *FieldStats {
	fs := &FieldStats{bits: make([]uint8, numFields)}
	for f := uint32(0); f < numFields; f++ {
		switch {
		case f == format.TimestampField:
			fs.bits[f] = format.BitsFor(uint64(maxTimestampDelta))
		case int(f) < len(fieldCardinalities):
			fs.bits[f] = format.BitsFor(fieldCardinalities[f])
		default:
			fs.bits[f] = format.ValueBits
		}
	}

	return fs
}

// NewFieldStatsFromWidths wraps deserialized widths. Used by the codebook
// reader.
func NewFieldStatsFromWidths(bits []uint8) *FieldStats {
	return &FieldStats{bits: bits}
}

// NumFields returns the number of fields covered.
func (fs *FieldStats) NumFields() uint32 {
	return uint32(len(fs.bits))
}

// Bits returns the literal width for a field. Unknown fields get the full
// value width so a literal can always be written.
func (fs *FieldStats) Bits(field uint32) uint8 {
	if int(field) >= len(fs.bits) {
		return format.ValueBits
	}

	return fs.bits[field]
}

// Widths returns the underlying width table for serialization.
func (fs *FieldStats) Widths() []uint8 {
	return fs.bits
}
