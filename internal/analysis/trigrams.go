package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

// BoundaryMarker marks which end of a word a trigram came from.
const BoundaryMarker = "$"

var errBudgetSpent = errors.New("word budget spent")

// Trigrams builds the word-boundary trigram fingerprint of the file.
//
// Each line is lowercased and reduced to letters and whitespace; dropped
// runes are removed, not replaced, so neighbouring fragments may merge.
// Words of up to three letters are recorded whole. Longer words give a
// "$abc" start token and an "xyz$" end token.
//
// The maxWords budget is checked before each line, so the processed word
// count can overshoot it by up to one line of words. A budget <= 0 means no
// limit.
func Trigrams(ctx context.Context, src corpus.Source, maxWords int) (model.Fingerprint, error) {
	caser := newLowerCaser()
	counts := freq.NewCounter[string]()
	processed := 0

	err := src.EachLine(ctx, func(line string) error {
		if maxWords > 0 && processed > maxWords {
			return errBudgetSpent
		}
		filtered := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsSpace(r) {
				return r
			}
			return -1
		}, caser.String(line))

		for _, word := range strings.Fields(filtered) {
			processed++
			for _, token := range wordTrigrams(word) {
				counts.Add(token)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errBudgetSpent) {
		return model.Fingerprint{}, err
	}
	return model.Fingerprint{Trigrams: counts.Sorted()}, nil
}

func wordTrigrams(word string) []string {
	runes := []rune(word)
	if len(runes) <= 3 {
		return []string{word}
	}
	return []string{
		BoundaryMarker + string(runes[:3]),
		string(runes[len(runes)-3:]) + BoundaryMarker,
	}
}
