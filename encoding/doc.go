// Package encoding implements the entropy-coding layer of the trail encoder:
// an LSB-first bit buffer, canonical Huffman codebook construction with an
// escape symbol for out-of-codebook literals, per-field literal bit widths,
// and the bigram selection that turns per-event item sets into gram
// coverings.
//
// The bit stream convention is LSB-first within each byte: bit i of the
// stream lives in byte i/8 at bit position i%8. Both the writer and the
// reader follow it, and the 3-bit trail length residual defined by the trail
// format is written through the same primitives.
package encoding
