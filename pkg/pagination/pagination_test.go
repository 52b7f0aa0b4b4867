package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 10, NormalizeLimit(10))

	limits := Limits{Default: 5, Max: 20}
	assert.Equal(t, 5, limits.NormalizeLimit(-1))
	assert.Equal(t, 20, limits.NormalizeLimit(500))
}

func TestCursorRoundTrip(t *testing.T) {
	offset, err := ParseCursor(EncodeCursor(42))
	require.NoError(t, err)
	assert.Equal(t, 42, offset)

	offset, err = ParseCursor("")
	require.NoError(t, err)
	assert.Zero(t, offset)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	_, err := ParseCursor("%%%")
	assert.Error(t, err)

	_, err = ParseCursor("bm90LWEtY3Vyc29y")
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	start, end, next := Window(5, 0, 2)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)
	require.NotEmpty(t, next)

	offset, err := ParseCursor(next)
	require.NoError(t, err)
	start, end, next = Window(5, offset, 10)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, end)
	assert.Empty(t, next)

	start, end, next = Window(3, 9, 2)
	assert.Equal(t, 3, start)
	assert.Equal(t, 3, end)
	assert.Empty(t, next)
}
