package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandByteArray(t *testing.T) {
	a, err := GenerateRandByteArray(16)
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := GenerateRandByteArray(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	empty, err := GenerateRandByteArray(0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("hunter2")
	WipeByteArray(b)
	assert.Equal(t, make([]byte, 7), b)

	WipeByteArray(nil)
}
