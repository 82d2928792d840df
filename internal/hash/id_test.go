package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID_Deterministic(t *testing.T) {
	require.Equal(t, ID("user-1"), ID("user-1"))
	require.NotEqual(t, ID("user-1"), ID("user-2"))
	require.NotZero(t, ID("user-1"))
}
