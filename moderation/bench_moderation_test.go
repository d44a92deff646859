package moderation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func benchDictionary(size int) []string {
	words := make([]string, 0, size)
	for i := 0; i < size; i++ {
		words = append(words, fmt.Sprintf("word_%d", i))
	}
	return words
}

// BenchmarkNewModerator measures automaton build time, the dominant cost at
// startup when the dictionary is large.
func BenchmarkNewModerator(b *testing.B) {
	words := benchDictionary(100_000)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := NewModerator(words, '*')
		require.NoError(b, err)
	}
}

func BenchmarkCensor(b *testing.B) {
	words := benchDictionary(10_000)
	moderator, err := NewModerator(words, '*')
	require.NoError(b, err)

	text := strings.Repeat("tudo bem pessoal, word_42 chegou cedo hoje. ", 50)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		moderator.Censor(text)
	}
}
