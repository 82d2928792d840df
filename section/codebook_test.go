package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/encoding"
	"github.com/charsyam/traildb/errs"
	"github.com/charsyam/traildb/format"
)

func buildTestCodebook(t *testing.T) (*encoding.Codebook, *encoding.FieldStats) {
	t.Helper()

	freqs := map[format.Gram]uint64{
		format.Unigram(format.NewItem(0, 0)):  50,
		format.Unigram(format.NewItem(1, 3)):  20,
		format.Unigram(format.NewItem(2, 9)):  5,
		format.Bigram(format.NewItem(1, 3), format.NewItem(2, 9)): 15,
	}
	cb, err := encoding.BuildCodebook(freqs)
	require.NoError(t, err)

	return cb, encoding.NewFieldStats([]uint64{0, 3, 9}, 3, 120)
}

func TestEncodeCodebook_ParseCodebook_RoundTrip(t *testing.T) {
	cb, fstats := buildTestCodebook(t)

	data := EncodeCodebook(cb, fstats)
	parsed, parsedStats, err := ParseCodebook(data)
	require.NoError(t, err)

	require.Equal(t, cb.Len(), parsed.Len())
	require.Equal(t, cb.EscapeCode(), parsed.EscapeCode())
	require.Equal(t, cb.Entries(), parsed.Entries())
	require.Equal(t, fstats.Widths(), parsedStats.Widths())
}

func TestEncodeCodebook_Deterministic(t *testing.T) {
	cb, fstats := buildTestCodebook(t)

	require.Equal(t, EncodeCodebook(cb, fstats), EncodeCodebook(cb, fstats))
}

func TestParseCodebook_RejectsBadMagic(t *testing.T) {
	cb, fstats := buildTestCodebook(t)
	data := EncodeCodebook(cb, fstats)
	data[0] ^= 0xFF

	_, _, err := ParseCodebook(data)
	require.ErrorIs(t, err, errs.ErrInvalidCodebook)
}

func TestParseCodebook_RejectsTruncation(t *testing.T) {
	cb, fstats := buildTestCodebook(t)
	data := EncodeCodebook(cb, fstats)

	for _, cut := range []int{0, 3, 10, len(data) - 1} {
		_, _, err := ParseCodebook(data[:cut])
		require.ErrorIs(t, err, errs.ErrInvalidCodebook, "cut at %d", cut)
	}
}
