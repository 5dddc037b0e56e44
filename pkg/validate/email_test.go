package validate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	require.True(t, Email("jo@example.com"))
	require.True(t, Email("first.last+tag@sub.example.co"))
	require.False(t, Email("not-an-email"))
	require.False(t, Email(""))
	require.False(t, Email("@example.com"))
}
