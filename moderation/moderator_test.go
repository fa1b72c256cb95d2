package moderation

import (
	"batepapo/errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions
// (e.g., "he" inside "The").
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar, slog.Default())
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "Multiple occurrences",
			input:    "badger badger badger",
			expected: "****** ****** ******",
			words:    []string{"badger", "badger", "badger"},
		},
		{
			name:     "Leet speak and internal punctuation",
			input:    "Look at B.4.d.g.e.r !",
			expected: "Look at *********** !",
			words:    []string{"badger"},
		},
		{
			name:     "Uppercase noise",
			input:    "a SNAKE over there",
			expected: "a ***** over there",
			words:    []string{"snake"},
		},
		{
			name:     "Clean text untouched",
			input:    "nothing wrong here",
			expected: "nothing wrong here",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := require.New(t)
			censored, found := mod.Censor(tt.input)
			r.Equal(tt.expected, censored)
			r.Equal(tt.words, found)
		})
	}
}

func TestNewModerator_Empty_Dictionary(t *testing.T) {
	req := require.New(t)
	_, err := NewModerator(nil, replacementChar, slog.Default())
	req.ErrorIs(err, errors.ErrEmptyWords)
}
