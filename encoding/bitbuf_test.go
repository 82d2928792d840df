package encoding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitWriter_SingleBits(t *testing.T) {
	w := NewBitWriter(16)

	w.WriteBits(1, 1)
	w.WriteBits(0, 1)
	w.WriteBits(1, 1)

	require.Equal(t, uint64(3), w.BitLen())
	// LSB-first: bits 1,0,1 -> 0b101 in the low bits of byte 0.
	require.Equal(t, []byte{0b101}, w.Bytes())
}

func TestBitWriter_MultiBitValues(t *testing.T) {
	w := NewBitWriter(16)

	w.WriteBits(0b1101, 4)
	w.WriteBits(0b10, 2)

	require.Equal(t, uint64(6), w.BitLen())
	require.Equal(t, []byte{0b10_1101}, w.Bytes())
}

func TestBitWriter_CrossesByteBoundary(t *testing.T) {
	w := NewBitWriter(16)

	w.WriteBits(0xFF, 8)
	w.WriteBits(0b1, 1)

	require.Equal(t, uint64(9), w.BitLen())
	require.Equal(t, []byte{0xFF, 0x01}, w.Bytes())
}

func TestBitWriter_PatchBits(t *testing.T) {
	w := NewBitWriter(16)

	w.WriteBits(0, 3) // placeholder, like a trail residual header
	w.WriteBits(0b10111, 5)
	w.PatchBits(0, 0b101, 3)

	require.Equal(t, []byte{0b10111_101}, w.Bytes())
}

func TestBitWriter_PatchClearsBits(t *testing.T) {
	w := NewBitWriter(16)

	w.WriteBits(0b111, 3)
	w.PatchBits(0, 0b010, 3)

	require.Equal(t, []byte{0b010}, w.Bytes())
}

func TestBitWriter_ResetReuses(t *testing.T) {
	w := NewBitWriter(16)

	w.WriteBits(0xFFFF, 16)
	w.Reset()
	require.Equal(t, uint64(0), w.BitLen())

	w.WriteBits(0b1, 1)
	require.Equal(t, []byte{0x01}, w.Bytes())
}

func TestBitWriter_FinishReleasesBuffer(t *testing.T) {
	w := NewBitWriter(16)
	w.WriteBits(0b1, 1)

	w.Finish()
	require.Panics(t, func() { w.WriteBits(0b1, 1) })

	// Finish is idempotent.
	w.Finish()
}

func TestBitReader_RoundTrip(t *testing.T) {
	w := NewBitWriter(64)
	values := []struct {
		v uint64
		n uint8
	}{
		{0b101, 3},
		{0, 1},
		{0xABCD, 16},
		{0x1FFFFFF, 25},
		{1, 1},
	}
	for _, p := range values {
		w.WriteBits(p.v, p.n)
	}

	r := NewBitReader(w.Bytes())
	for _, p := range values {
		got, ok := r.ReadBits(p.n)
		require.True(t, ok)
		require.Equal(t, p.v, got)
	}
}

func TestBitReader_ExhaustsCleanly(t *testing.T) {
	r := NewBitReader([]byte{0xFF})

	_, ok := r.ReadBits(8)
	require.True(t, ok)

	_, ok = r.ReadBits(1)
	require.False(t, ok)
	require.Equal(t, uint64(0), r.Remaining())
}

func TestBitReader_Skip(t *testing.T) {
	r := NewBitReader([]byte{0b1010_0000})

	require.True(t, r.Skip(5))
	v, ok := r.ReadBits(3)
	require.True(t, ok)
	require.Equal(t, uint64(0b101), v)
	require.False(t, r.Skip(1))
}
