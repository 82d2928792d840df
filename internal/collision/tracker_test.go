package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charsyam/traildb/errs"
)

func TestTracker_NewCookie(t *testing.T) {
	tr := NewTracker()

	seen, err := tr.Track("user-1", 0xABCD)
	require.NoError(t, err)
	require.False(t, seen)
	require.Equal(t, 1, tr.Count())
}

func TestTracker_SameCookieSeen(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Track("user-1", 0xABCD)
	require.NoError(t, err)

	seen, err := tr.Track("user-1", 0xABCD)
	require.NoError(t, err)
	require.True(t, seen)
	require.Equal(t, 1, tr.Count())
}

func TestTracker_Collision(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Track("user-1", 0xABCD)
	require.NoError(t, err)

	_, err = tr.Track("user-2", 0xABCD)
	require.ErrorIs(t, err, errs.ErrCookieCollision)
}

func TestTracker_EmptyKey(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Track("", 1)
	require.ErrorIs(t, err, errs.ErrInvalidCookie)
}

func TestTracker_Reset(t *testing.T) {
	tr := NewTracker()

	_, err := tr.Track("user-1", 1)
	require.NoError(t, err)
	tr.Reset()
	require.Equal(t, 0, tr.Count())

	seen, err := tr.Track("user-1", 1)
	require.NoError(t, err)
	require.False(t, seen)
}
