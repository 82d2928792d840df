package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/format"
)

func TestNewFieldStats_Widths(t *testing.T) {
	fstats := NewFieldStats([]uint64{0, 1, 255, 256}, 4, 5000)

	require.Equal(t, uint32(4), fstats.NumFields())
	require.Equal(t, uint8(13), fstats.Bits(0)) // BitsFor(5000)
	require.Equal(t, uint8(1), fstats.Bits(1))
	require.Equal(t, uint8(8), fstats.Bits(2))
	require.Equal(t, uint8(9), fstats.Bits(3))
}

func TestNewFieldStats_ZeroDelta(t *testing.T) {
	fstats := NewFieldStats([]uint64{0}, 1, 0)

	// Even a zero delta needs one literal bit on the wire.
	require.Equal(t, uint8(1), fstats.Bits(0))
}

func TestFieldStats_UnknownFieldGetsFullWidth(t *testing.T) {
	fstats := NewFieldStats([]uint64{0, 3}, 2, 1)

	require.Equal(t, uint8(format.ValueBits), fstats.Bits(9))
}

func TestFieldStats_MissingCardinalityGetsFullWidth(t *testing.T) {
	fstats := NewFieldStats([]uint64{0}, 3, 1)

	require.Equal(t, uint8(format.ValueBits), fstats.Bits(2))
}

func TestNewFieldStatsFromWidths_RoundTrip(t *testing.T) {
	original := NewFieldStats([]uint64{0, 7, 100}, 3, 42)
	restored := NewFieldStatsFromWidths(original.Widths())

	require.Equal(t, original.NumFields(), restored.NumFields())
	for f := uint32(0); f < original.NumFields(); f++ {
		require.Equal(t, original.Bits(f), restored.Bits(f))
	}
}
