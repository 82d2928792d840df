package trail

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/format"
)

func spillRoundTrip(t *testing.T, compression format.CompressionType, chunkRecords int, recs []GroupedRecord) []GroupedRecord {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tmp.grouped.spill")
	w, err := newSpillWriter(path, compression, chunkRecords)
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, w.Append(rec))
	}
	require.NoError(t, w.Close())

	r, err := newSpillReader(path, compression, 0)
	require.NoError(t, err)
	defer r.Close()

	var got []GroupedRecord
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, rec)
	}

	return got
}

func makeRecords(n int) []GroupedRecord {
	recs := make([]GroupedRecord, n)
	for i := range recs {
		recs[i] = GroupedRecord{
			CookieID:         uint32(i / 10),
			ItemZero:         uint64(i * 3),
			NumItems:         uint32(i % 5),
			EncodedTimestamp: uint32(i%300) << 8,
		}
	}

	return recs
}

func TestSpill_RoundTrip(t *testing.T) {
	recs := makeRecords(1000)
	got := spillRoundTrip(t, format.CompressionNone, 0, recs)
	require.Equal(t, recs, got)
}

func TestSpill_RoundTrip_ChunkBoundaries(t *testing.T) {
	// Chunk of 7 with 23 records: three full chunks plus a short tail.
	recs := makeRecords(23)
	got := spillRoundTrip(t, format.CompressionNone, 7, recs)
	require.Equal(t, recs, got)
}

func TestSpill_RoundTrip_Compressed(t *testing.T) {
	recs := makeRecords(5000)
	for _, ct := range []format.CompressionType{
		format.CompressionS2, format.CompressionZstd, format.CompressionLZ4,
	} {
		got := spillRoundTrip(t, ct, 512, recs)
		require.Equal(t, recs, got, ct.String())
	}
}

func TestSpill_EmptyFile(t *testing.T) {
	got := spillRoundTrip(t, format.CompressionNone, 0, nil)
	require.Empty(t, got)
}

func TestSpillWriter_ExclusiveCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tmp.grouped.dup")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := newSpillWriter(path, format.CompressionNone, 0)
	require.Error(t, err)
}
