// Package moderation censors configured words in message text before
// persistence. Matching is case-insensitive and uses an Aho-Corasick
// automaton so the cost stays linear in the message length regardless of the
// dictionary size.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the automaton from the censored word list. An empty
// list yields a disabled moderator whose Censor is a no-op.
func NewModerator(censoredWords []string, replacement rune) (*Moderator, error) {
	if len(censoredWords) == 0 {
		return &Moderator{replacement: replacement}, nil
	}

	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = foldRunes([]rune(word))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, replacement: replacement}, nil
}

// Censor masks every dictionary hit with the replacement rune, preserving
// the length and spacing of the original text. It returns the censored text
// together with the matched words.
func (m *Moderator) Censor(original string) (string, []string) {
	if m.matcher == nil || original == "" {
		return original, nil
	}

	runes := []rune(original)
	spans := m.matcher.MultiPatternSearch(foldRunes(runes), false)
	if len(spans) == 0 {
		return original, nil
	}

	var found []string
	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(runes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			runes[i] = m.replacement
		}
		found = append(found, string(span.Word))
	}
	return string(runes), found
}

// foldRunes lowercases rune by rune so every index in the folded text still
// points at the same rune in the original.
func foldRunes(input []rune) []rune {
	out := make([]rune, len(input))
	for i, r := range input {
		out[i] = unicode.ToLower(r)
	}
	return out
}
