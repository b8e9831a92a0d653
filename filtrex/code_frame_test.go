package filtrex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeFrameUnderlinesToken(t *testing.T) {
	_, err := Parse("a 'first name'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 | a 'first name'\n  |   ^~~~~~~~~~~~~")

	_, err = Parse("a +\n  * b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 |   * b\n  |   ^")
}

func TestCodeFrameStopsAtLineEnd(t *testing.T) {
	_, err := tokenize("a == \"abc\nd")
	var lexErr *LexError
	require.True(t, errors.As(err, &lexErr))
	assert.Equal(t, 6, lexErr.width)
	assert.Contains(t, err.Error(), "1 | a == \"abc\n  |      ^~~~")
}

func TestCodeFrameCountsRunes(t *testing.T) {
	_, err := tokenize("é + #")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 | é + #\n  |     ^")
}

func TestCodeFrameOutOfRange(t *testing.T) {
	assert.Empty(t, codeFrame("", Position{Line: 1, Column: 1}, 1))
	assert.Empty(t, codeFrame("abc", Position{Offset: 10, Line: 1, Column: 11}, 1))
	assert.Equal(t, "1 | abc\n  |    ^", codeFrame("abc", Position{Offset: 3, Line: 1, Column: 4}, 0))
}
