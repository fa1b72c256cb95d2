// Package moderation censors banned words in chat messages before they are
// persisted. Matching runs on a normalized view of the text so spacing,
// punctuation, or accents cannot be used to slip a word through.
package moderation

import (
	"batepapo/errors"
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
	log          *slog.Logger
}

// mapping links each normalized rune back to its index in the original text,
// so a match found in the normalized view can be starred out in place.
type mapping struct {
	normalized []rune
	origIdx    []int
}

// NewModerator builds the Aho-Corasick automaton from the banned words list.
// Words are normalized the same way as inbound text.
func NewModerator(censoredWords []string, censoredChar rune, log *slog.Logger) (Moderator, error) {
	if len(censoredWords) == 0 {
		return Moderator{}, errors.ErrEmptyWords
	}

	patterns := make([][]rune, len(censoredWords))
	for i, word := range censoredWords {
		patterns[i] = normalizeWord(word)
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: m, censoredChar: censoredChar, log: log}, nil
}

// Censor replaces every banned pattern with the replacement character,
// preserving the surrounding spacing and punctuation of the original text.
// It returns the censored text and the list of matched words.
func (m *Moderator) Censor(original string) (string, []string) {
	mapped := normalize(original)
	if len(mapped.normalized) == 0 {
		return original, nil
	}

	spans := m.matcher.MultiPatternSearch(mapped.normalized, false)
	if len(spans) == 0 {
		return original, nil
	}

	origRunes := []rune(original)
	var found []string
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(mapped.origIdx) {
			continue
		}
		found = append(found, string(span.Word))

		// Star out everything between the first and last matched rune,
		// including the noise characters in between.
		for i := mapped.origIdx[start]; i <= mapped.origIdx[end-1]; i++ {
			origRunes[i] = m.censoredChar
		}
	}

	m.log.Debug("Censored message", "matches", len(found))
	return string(origRunes), found
}

func normalize(input string) mapping {
	origRunes := []rune(input)
	out := mapping{
		normalized: make([]rune, 0, len(origRunes)),
		origIdx:    make([]int, 0, len(origRunes)),
	}
	for i, r := range origRunes {
		clean := simplify(r)
		if skip(clean) {
			continue
		}
		out.normalized = append(out.normalized, unicode.ToLower(clean))
		out.origIdx = append(out.origIdx, i)
	}
	return out
}

func normalizeWord(word string) []rune {
	out := make([]rune, 0, len(word))
	for _, r := range word {
		clean := simplify(r)
		if skip(clean) {
			continue
		}
		out = append(out, unicode.ToLower(clean))
	}
	return out
}

// simplify maps common Leet speak substitutions back to plain letters.
func simplify(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func skip(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
