package analysis

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/verte-zerg/textstat/internal/charset"
	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

// Words counts normalized words and their lengths. A token is lowercased and
// stripped of every rune outside the word alphabet; tokens that strip to
// nothing are dropped, so the total can be lower than BasicStats.Words.
func Words(ctx context.Context, src corpus.Source, alphabet charset.Set) (model.WordStats, error) {
	norm := wordNormalizer{caser: newLowerCaser(), alphabet: alphabet}
	words := freq.NewCounter[string]()
	lengths := freq.NewCounter[int]()

	err := src.EachLine(ctx, func(line string) error {
		for _, token := range strings.Fields(line) {
			word := norm.normalize(token)
			if word == "" {
				continue
			}
			words.Add(word)
			lengths.Add(utf8.RuneCountInString(word))
		}
		return nil
	})
	if err != nil {
		return model.WordStats{}, err
	}
	return model.WordStats{
		Occurrences:       words.Sorted(),
		LengthOccurrences: lengths.Sorted(),
	}, nil
}

type wordNormalizer struct {
	caser    cases.Caser
	alphabet charset.Set
}

func (n wordNormalizer) normalize(token string) string {
	lower := n.caser.String(token)
	return strings.Map(func(r rune) rune {
		if n.alphabet.Contains(r) {
			return r
		}
		return -1
	}, lower)
}
