package encoding

import (
	"fmt"

	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

// EncodeGrams appends the Huffman codes for one event's gram covering to the
// bit stream.
//
// Grams present in the codebook are written as their codeword. An
// out-of-codebook gram falls back to literals: for each of its items the
// escape code, then the field id in format.FieldBits bits, then the value in
// the field's literal width. The gram builder only pairs items into bigrams
// it has tallied, so in practice literals are unigrams; the bigram fallback
// keeps the contract total anyway.
func EncodeGrams(cb *Codebook, grams []format.Gram, w *BitWriter, fstats *FieldStats) {
	for _, g := range grams {
		if c, ok := cb.Lookup(g); ok {
			w.WriteBits(uint64(c.Bits), c.Length)
			continue
		}

		encodeLiteral(cb, g.First(), w, fstats)
		if g.IsBigram() {
			encodeLiteral(cb, g.Second(), w, fstats)
		}
	}
}

func encodeLiteral(cb *Codebook, it format.Item, w *BitWriter, fstats *FieldStats) {
	esc := cb.EscapeCode()
	w.WriteBits(uint64(esc.Bits), esc.Length)
	w.WriteBits(uint64(it.Field()), format.FieldBits)
	w.WriteBits(uint64(it.Value()), fstats.Bits(it.Field()))
}

// Decoder performs sequential symbol decoding against a codebook.
//
// It exists for the verification path: the encoder's tests replay every trail
// through it, and external readers can reuse it. Random access and indexed
// lookup stay out of scope.
type Decoder struct {
	// byCode maps length<<32|code to the gram; escape has its own key.
	byCode    map[uint64]format.Gram
	escapeKey uint64
	maxLen    uint8
	fstats    *FieldStats
	pending   format.Item
}

// NewDecoder builds a decoder from a codebook and the field stats that sized
// its literals.
func NewDecoder(cb *Codebook, fstats *FieldStats) *Decoder {
	d := &Decoder{
		byCode: make(map[uint64]format.Gram, len(cb.codes)),
		fstats: fstats,
	}

	for g, c := range cb.codes {
		d.byCode[codeKey(c)] = g
		if c.Length > d.maxLen {
			d.maxLen = c.Length
		}
	}
	d.escapeKey = codeKey(cb.escape)
	if cb.escape.Length > d.maxLen {
		d.maxLen = cb.escape.Length
	}

	return d
}

func codeKey(c Code) uint64 {
	return uint64(c.Length)<<32 | uint64(c.Bits)
}

// Next decodes one item from the stream.
//
// A bigram yields its low-half item first and its high-half item on the
// following call without consuming bits. The pending slot uses 0 as the
// empty sentinel; that is safe because a bigram's high half always has a
// non-zero field id, so a pending item is never 0.
func (d *Decoder) Next(r *BitReader) (format.Item, error) {
	if d.pending != 0 {
		it := d.pending
		d.pending = 0

		return it, nil
	}

	var acc uint64
	for length := uint8(1); length <= d.maxLen; length++ {
		bit, ok := r.ReadBits(1)
		if !ok {
			return 0, fmt.Errorf("%w: truncated codeword", errs.ErrInvalidCodebook)
		}
		acc |= bit << (length - 1)

		key := uint64(length)<<32 | acc
		if key == d.escapeKey {
			return d.readLiteral(r)
		}
		if g, ok := d.byCode[key]; ok {
			if g.IsBigram() {
				d.pending = g.Second()
			}

			return g.First(), nil
		}
	}

	return 0, fmt.Errorf("%w: no codeword within %d bits", errs.ErrInvalidCodebook, d.maxLen)
}

// HasPending reports whether the high half of a bigram is queued for the
// next call; it decodes without consuming bits.
func (d *Decoder) HasPending() bool {
	return d.pending != 0
}

func (d *Decoder) readLiteral(r *BitReader) (format.Item, error) {
	field, ok := r.ReadBits(format.FieldBits)
	if !ok {
		return 0, fmt.Errorf("%w: truncated literal field", errs.ErrInvalidCodebook)
	}
	value, ok := r.ReadBits(d.fstats.Bits(uint32(field)))
	if !ok {
		return 0, fmt.Errorf("%w: truncated literal value", errs.ErrInvalidCodebook)
	}

	return format.NewItem(uint32(field), uint32(value)), nil
}
