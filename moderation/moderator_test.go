package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake"}
	mod, err := NewModerator(dictionary, replacementChar)
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{
			name:     "simple word, spacing preserved",
			input:    "The badger is here",
			expected: "The ****** is here",
			words:    []string{"badger"},
		},
		{
			name:     "case-insensitive match",
			input:    "A BADGER and a Snake",
			expected: "A ****** and a *****",
			words:    []string{"badger", "snake"},
		},
		{
			name:     "multiple occurrences",
			input:    "badger badger",
			expected: "****** ******",
			words:    []string{"badger", "badger"},
		},
		{
			name:     "accented text around a hit",
			input:    "Um verão com badger",
			expected: "Um verão com ******",
			words:    []string{"badger"},
		},
		{
			name:     "nothing to censor",
			input:    "sala-chat is quiet today",
			expected: "sala-chat is quiet today",
			words:    nil,
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
			words:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content, words := mod.Censor(tt.input)
			req.Equal(tt.expected, content)
			req.Equal(tt.words, words)
		})
	}
}

func TestModerator_EmptyDictionaryIsNoop(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator(nil, replacementChar)
	req.NoError(err)

	content, words := mod.Censor("anything goes here")
	req.Equal("anything goes here", content)
	req.Nil(words)
}
