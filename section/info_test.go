package section

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/errs"
)

func TestWriteInfo_Format(t *testing.T) {
	var buf bytes.Buffer
	err := WriteInfo(&buf, Info{
		NumCookies:        1,
		NumEvents:         1,
		MinTimestamp:      100,
		MaxTimestamp:      100,
		MaxTimestampDelta: 0,
	})
	require.NoError(t, err)
	require.Equal(t, "1 1 100 100 0\n", buf.String())
}

func TestParseInfo_RoundTrip(t *testing.T) {
	info := Info{
		NumCookies:        42,
		NumEvents:         99999,
		MinTimestamp:      1500000000,
		MaxTimestamp:      1500086400,
		MaxTimestampDelta: 86400,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteInfo(&buf, info))

	parsed, err := ParseInfo(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, info, parsed)
}

func TestParseInfo_RejectsGarbage(t *testing.T) {
	_, err := ParseInfo([]byte("not an info line\n"))
	require.ErrorIs(t, err, errs.ErrInvalidInfo)

	_, err = ParseInfo([]byte("1 2 3\n"))
	require.ErrorIs(t, err, errs.ErrInvalidInfo)
}
