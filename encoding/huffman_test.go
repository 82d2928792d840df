package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

func TestBuildCodebook_Empty(t *testing.T) {
	_, err := BuildCodebook(nil)
	require.ErrorIs(t, err, errs.ErrCodebookEmpty)

	_, err = BuildCodebook(map[format.Gram]uint64{})
	require.ErrorIs(t, err, errs.ErrCodebookEmpty)
}

func TestBuildCodebook_SingleGram(t *testing.T) {
	g := format.Unigram(format.NewItem(1, 7))
	cb, err := BuildCodebook(map[format.Gram]uint64{g: 10})
	require.NoError(t, err)

	require.Equal(t, 1, cb.Len())
	c, ok := cb.Lookup(g)
	require.True(t, ok)
	require.NotZero(t, c.Length)
	require.NotZero(t, cb.EscapeCode().Length)
	require.NotEqual(t, c, cb.EscapeCode())
}

func TestBuildCodebook_PrefixFree(t *testing.T) {
	freqs := map[format.Gram]uint64{}
	for i := uint32(0); i < 40; i++ {
		freqs[format.Unigram(format.NewItem(1, i+1))] = uint64(i*i + 1)
	}

	cb, err := BuildCodebook(freqs)
	require.NoError(t, err)

	codes := append(cb.Entries(), Entry{Code: cb.EscapeCode()})
	for i, a := range codes {
		require.Greater(t, int(a.Code.Length), 0)
		require.LessOrEqual(t, int(a.Code.Length), MaxCodeLength)
		for j, b := range codes {
			if i == j {
				continue
			}
			// Codes are stored in transmission order (LSB-first), so a
			// prefix violation is a shorter code matching the low bits of
			// a longer one.
			if a.Code.Length <= b.Code.Length {
				low := b.Code.Bits & (1<<a.Code.Length - 1)
				require.NotEqual(t, a.Code.Bits, low,
					"code %d is a transmission prefix of code %d", i, j)
			}
		}
	}
}

func TestBuildCodebook_FrequentGramsGetShorterCodes(t *testing.T) {
	common := format.Unigram(format.NewItem(1, 1))
	rare := format.Unigram(format.NewItem(1, 2))
	freqs := map[format.Gram]uint64{
		common: 1000,
		rare:   1,
		format.Unigram(format.NewItem(1, 3)): 1,
		format.Unigram(format.NewItem(1, 4)): 1,
	}

	cb, err := BuildCodebook(freqs)
	require.NoError(t, err)

	cc, ok := cb.Lookup(common)
	require.True(t, ok)
	rc, ok := cb.Lookup(rare)
	require.True(t, ok)
	require.Less(t, cc.Length, rc.Length)
}

func TestBuildCodebook_Deterministic(t *testing.T) {
	build := func() []Entry {
		freqs := map[format.Gram]uint64{}
		for i := uint32(0); i < 200; i++ {
			freqs[format.Unigram(format.NewItem(1, i+1))] = uint64(i%7 + 1)
		}
		cb, err := BuildCodebook(freqs)
		require.NoError(t, err)

		return cb.Entries()
	}

	require.Equal(t, build(), build())
}

func TestEncodeGrams_DecodeRoundTrip(t *testing.T) {
	tsItem := format.NewItem(format.TimestampField, 5)
	a := format.NewItem(1, 9)
	b := format.NewItem(2, 4)
	bg := format.Bigram(a, b)

	freqs := map[format.Gram]uint64{
		format.Unigram(tsItem): 4,
		format.Unigram(a):      2,
		bg:                     3,
	}
	cb, err := BuildCodebook(freqs)
	require.NoError(t, err)

	fstats := NewFieldStats([]uint64{0, 9, 4}, 3, 5)
	grams := []format.Gram{format.Unigram(tsItem), bg, format.Unigram(a)}

	w := NewBitWriter(64)
	EncodeGrams(cb, grams, w, fstats)

	dec := NewDecoder(cb, fstats)
	r := NewBitReader(w.Bytes())

	want := []format.Item{tsItem, a, b, a}
	for _, expected := range want {
		got, err := dec.Next(r)
		require.NoError(t, err)
		require.Equal(t, expected, got)
	}
}

func TestEncodeGrams_EscapeLiteral(t *testing.T) {
	inBook := format.Unigram(format.NewItem(1, 1))
	cb, err := BuildCodebook(map[format.Gram]uint64{inBook: 5})
	require.NoError(t, err)

	fstats := NewFieldStats([]uint64{0, 200, 4000}, 3, 1000)

	// Not in the book: must travel as escape + literal.
	outOfBook := format.NewItem(2, 3210)
	w := NewBitWriter(64)
	EncodeGrams(cb, []format.Gram{format.Unigram(outOfBook)}, w, fstats)

	dec := NewDecoder(cb, fstats)
	got, err := dec.Next(NewBitReader(w.Bytes()))
	require.NoError(t, err)
	require.Equal(t, outOfBook, got)
}

func TestNewCodebook_RejectsBadEntries(t *testing.T) {
	_, err := NewCodebook(nil, Code{Bits: 0, Length: 0})
	require.ErrorIs(t, err, errs.ErrInvalidCodebook)

	_, err = NewCodebook([]Entry{
		{Gram: 1, Code: Code{Bits: 0, Length: 1}},
		{Gram: 1, Code: Code{Bits: 1, Length: 1}},
	}, Code{Bits: 1, Length: 2})
	require.ErrorIs(t, err, errs.ErrInvalidCodebook)
}
