// Package moderation masks blacklisted words in message bodies before
// they are persisted or fanned out. Matching is case-insensitive and
// ignores punctuation and spacing inside a word, so "b.a.d" still
// matches "bad".
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

type Moderator struct {
	matcher  *goahocorasick.Machine
	maskChar rune
}

// NewModerator builds the Aho-Corasick automaton over the normalized
// word list. An empty list yields a moderator that passes everything
// through.
func NewModerator(words []string, maskChar rune) (*Moderator, error) {
	if len(words) == 0 {
		return &Moderator{maskChar: maskChar}, nil
	}
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = foldRunes([]rune(word))
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: machine, maskChar: maskChar}, nil
}

// Censor replaces every matched word with the mask character,
// preserving the original length and surrounding text.
func (m *Moderator) Censor(original string) string {
	if m.matcher == nil {
		return original
	}

	origRunes := []rune(original)
	folded, origIdx := fold(origRunes)
	if len(folded) == 0 {
		return original
	}

	spans := m.matcher.MultiPatternSearch(folded, false)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			origRunes[i] = m.maskChar
		}
	}
	return string(origRunes)
}

// fold lowercases the input and strips separator noise, keeping a map
// from each folded rune back to its original position so masking can
// cover the full original span.
func fold(input []rune) ([]rune, []int) {
	folded := make([]rune, 0, len(input))
	origIdx := make([]int, 0, len(input))
	for i, r := range input {
		if isNoise(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return folded, origIdx
}

func foldRunes(input []rune) []rune {
	out, _ := fold(input)
	return out
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
