package encoding

import (
	"container/heap"
	"fmt"
	"math/bits"
	"sort"

	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

const (
	// MaxCodeLength caps Huffman code lengths; the decoder accumulates codes
	// in a 32-bit register.
	MaxCodeLength = 32

	// MaxCodebookSize caps the number of symbols in one codebook, including
	// the escape symbol.
	MaxCodebookSize = 1 << 16

	// lengthLimitRetries bounds the frequency-damping passes used to pull
	// overlong codes back under MaxCodeLength. 64 damping passes (f/2+1)
	// bring any u64 frequency down to 1 or 2; with at most MaxCodebookSize
	// symbols whose frequencies differ by at most a factor of two, the tree
	// depth stays well under MaxCodeLength.
	lengthLimitRetries = 64
)

// Code is one canonical Huffman codeword.
//
// Bits holds the codeword in its low Length bits; on the wire it is written
// LSB-first like everything else in the trail stream.
type Code struct {
	Bits   uint32
	Length uint8
}

// Codebook maps grams to canonical prefix codes.
//
// Every codebook carries one escape code. A symbol absent from the book is
// written as the escape code followed by a fixed-width literal: the item's
// field id in format.FieldBits bits, then its value in the width the field
// stats table assigns to that field.
type Codebook struct {
	codes  map[format.Gram]Code
	escape Code
}

// huffSymbol is one symbol during construction. The escape pseudo-symbol
// sorts after every real gram.
type huffSymbol struct {
	gram     format.Gram
	escape   bool
	freq     uint64
	length   uint8
	codeBits uint32
}

func (s huffSymbol) less(o huffSymbol) bool {
	if s.escape != o.escape {
		return o.escape
	}

	return s.gram < o.gram
}

// huffNode is one node of the Huffman tree under construction.
type huffNode struct {
	freq  uint64
	seq   int // creation order, the deterministic tiebreak
	left  int // child node index, -1 for leaves
	right int
	sym   int // symbol index for leaves
}

// nodeHeap orders tree nodes by (freq, seq).
type nodeHeap struct {
	nodes []huffNode
	order []int
}

func (h *nodeHeap) Len() int { return len(h.order) }

func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.nodes[h.order[i]], h.nodes[h.order[j]]
	if a.freq != b.freq {
		return a.freq < b.freq
	}

	return a.seq < b.seq
}

func (h *nodeHeap) Swap(i, j int) { h.order[i], h.order[j] = h.order[j], h.order[i] }

func (h *nodeHeap) Push(x any) { h.order = append(h.order, x.(int)) }

func (h *nodeHeap) Pop() any {
	n := len(h.order)
	v := h.order[n-1]
	h.order = h.order[:n-1]

	return v
}

// BuildCodebook constructs a canonical prefix code over the given gram
// frequencies plus the escape symbol.
//
// Construction is deterministic: symbols are ordered by descending frequency
// with ascending gram value as the tiebreak before tree building, so two
// encodes of the same input produce byte-identical codebooks.
//
// When the frequency distribution would produce a code longer than
// MaxCodeLength, frequencies are damped (halved plus one) and the tree
// is rebuilt; this trades a fraction of a bit per symbol for the hard length
// bound.
//
// Returns ErrCodebookEmpty for an empty frequency map and
// ErrCodeLengthOverflow if damping cannot satisfy the bound.
func BuildCodebook(gramFreqs map[format.Gram]uint64) (*Codebook, error) {
	if len(gramFreqs) == 0 {
		return nil, errs.ErrCodebookEmpty
	}

	symbols := make([]huffSymbol, 0, len(gramFreqs)+1)
	for g, f := range gramFreqs {
		if f == 0 {
			continue
		}
		symbols = append(symbols, huffSymbol{gram: g, freq: f})
	}

	// Order by frequency so a codebook overflow drops the rarest grams into
	// the escape path instead of arbitrary ones.
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].freq != symbols[j].freq {
			return symbols[i].freq > symbols[j].freq
		}

		return symbols[i].gram < symbols[j].gram
	})

	escapeFreq := uint64(1)
	if len(symbols) > MaxCodebookSize-1 {
		for _, s := range symbols[MaxCodebookSize-1:] {
			escapeFreq += s.freq
		}
		symbols = symbols[:MaxCodebookSize-1]
	}
	symbols = append(symbols, huffSymbol{escape: true, freq: escapeFreq})

	if err := assignLengths(symbols); err != nil {
		return nil, err
	}

	assignCanonicalCodes(symbols)

	cb := &Codebook{codes: make(map[format.Gram]Code, len(symbols)-1)}
	for _, s := range symbols {
		c := Code{Bits: s.codeBits, Length: s.length}
		if s.escape {
			cb.escape = c
		} else {
			cb.codes[s.gram] = c
		}
	}

	return cb, nil
}

// assignLengths computes code lengths for the symbols in place, damping
// frequencies until the lengths fit MaxCodeLength.
func assignLengths(symbols []huffSymbol) error {
	freqs := make([]uint64, len(symbols))
	for i, s := range symbols {
		freqs[i] = s.freq
	}

	for retry := 0; retry <= lengthLimitRetries; retry++ {
		maxLen := buildTreeLengths(symbols, freqs)
		if maxLen <= MaxCodeLength {
			return nil
		}

		for i, f := range freqs {
			freqs[i] = f/2 + 1
		}
	}

	return fmt.Errorf("%w: %d symbols", errs.ErrCodeLengthOverflow, len(symbols))
}

// buildTreeLengths runs the Huffman merge and writes the resulting depth of
// each leaf into symbols[i].length, returning the maximum depth.
func buildTreeLengths(symbols []huffSymbol, freqs []uint64) uint8 {
	if len(symbols) == 1 {
		symbols[0].length = 1
		return 1
	}

	nodes := make([]huffNode, 0, 2*len(symbols)-1)
	h := &nodeHeap{nodes: nil, order: make([]int, 0, len(symbols))}
	for i := range symbols {
		nodes = append(nodes, huffNode{freq: freqs[i], seq: len(nodes), left: -1, right: -1, sym: i})
		h.order = append(h.order, len(nodes)-1)
	}
	h.nodes = nodes
	heap.Init(h)

	for h.Len() > 1 {
		a := heap.Pop(h).(int)
		b := heap.Pop(h).(int)
		h.nodes = append(h.nodes, huffNode{
			freq:  h.nodes[a].freq + h.nodes[b].freq,
			seq:   len(h.nodes),
			left:  a,
			right: b,
			sym:   -1,
		})
		heap.Push(h, len(h.nodes)-1)
	}

	root := h.order[0]

	// Iterative depth walk; the tree can be deep before damping kicks in.
	var maxLen uint8
	type frame struct {
		node  int
		depth uint8
	}
	stack := []frame{{root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := h.nodes[f.node]
		if n.sym >= 0 {
			depth := f.depth
			if depth == 0 {
				depth = 1
			}
			symbols[n.sym].length = depth
			if depth > maxLen {
				maxLen = depth
			}

			continue
		}

		if f.depth == 255 {
			// Depth counter would wrap; report an impossible length and let
			// the damping loop handle it.
			return 255
		}
		stack = append(stack, frame{n.left, f.depth + 1}, frame{n.right, f.depth + 1})
	}

	return maxLen
}

// assignCanonicalCodes assigns increasing codewords in (length, symbol)
// order, the canonical form every decoder of this format expects.
//
// The stored bits are the canonical codeword reversed: the trail stream is
// LSB-first, so reversing up front makes the canonical MSB travel first and
// keeps the code prefix-decodable bit by bit.
func assignCanonicalCodes(symbols []huffSymbol) {
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].length != symbols[j].length {
			return symbols[i].length < symbols[j].length
		}

		return symbols[i].less(symbols[j])
	})

	code := uint32(0)
	curLen := symbols[0].length
	for i := range symbols {
		if symbols[i].length > curLen {
			code <<= symbols[i].length - curLen
			curLen = symbols[i].length
		}
		symbols[i].codeBits = bits.Reverse32(code) >> (32 - symbols[i].length)
		code++
	}
}

// Lookup returns the code for a gram and whether the gram is in the book.
func (cb *Codebook) Lookup(g format.Gram) (Code, bool) {
	c, ok := cb.codes[g]
	return c, ok
}

// EscapeCode returns the escape codeword.
func (cb *Codebook) EscapeCode() Code {
	return cb.escape
}

// Len returns the number of gram entries, excluding the escape symbol.
func (cb *Codebook) Len() int {
	return len(cb.codes)
}

// Entries returns the (gram, code) pairs sorted by gram value.
// Serialization uses this order so codebook files are deterministic.
func (cb *Codebook) Entries() []Entry {
	entries := make([]Entry, 0, len(cb.codes))
	for g, c := range cb.codes {
		entries = append(entries, Entry{Gram: g, Code: c})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Gram < entries[j].Gram
	})

	return entries
}

// Entry is one serializable codebook entry.
type Entry struct {
	Gram format.Gram
	Code Code
}

// NewCodebook assembles a codebook from deserialized entries and an escape
// code. Used by the codebook reader; BuildCodebook is the encoding path.
func NewCodebook(entries []Entry, escape Code) (*Codebook, error) {
	if escape.Length == 0 || escape.Length > MaxCodeLength {
		return nil, fmt.Errorf("%w: escape code length %d", errs.ErrInvalidCodebook, escape.Length)
	}

	cb := &Codebook{
		codes:  make(map[format.Gram]Code, len(entries)),
		escape: escape,
	}
	for _, e := range entries {
		if e.Code.Length == 0 || e.Code.Length > MaxCodeLength {
			return nil, fmt.Errorf("%w: gram %#x code length %d", errs.ErrInvalidCodebook, uint64(e.Gram), e.Code.Length)
		}
		if _, dup := cb.codes[e.Gram]; dup {
			return nil, fmt.Errorf("%w: duplicate gram %#x", errs.ErrInvalidCodebook, uint64(e.Gram))
		}
		cb.codes[e.Gram] = e.Code
	}

	return cb, nil
}
