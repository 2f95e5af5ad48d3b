package analysis

import (
	"context"
	"unicode"

	"github.com/verte-zerg/textstat/internal/charset"
	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

// Classify returns the class of r. Only the ASCII space counts as a space;
// tabs, newlines and other whitespace are Other.
func Classify(r rune, punctuation charset.Set) model.CharClass {
	switch {
	case r == ' ':
		return model.ClassSpace
	case unicode.IsLetter(r):
		return model.ClassLetter
	case unicode.IsDigit(r):
		return model.ClassDigit
	case punctuation.Contains(r):
		return model.ClassPunctuation
	default:
		return model.ClassOther
	}
}

// Characters classifies every code point of the file, line terminators included.
func Characters(ctx context.Context, src corpus.Source, punctuation charset.Set) (model.CharacterStats, error) {
	var stats model.CharacterStats
	occurrences := freq.NewCounter[rune]()

	err := src.EachRune(ctx, func(r rune) {
		stats.Total++
		switch Classify(r, punctuation) {
		case model.ClassLetter:
			stats.Letters++
		case model.ClassDigit:
			stats.Digits++
		case model.ClassPunctuation:
			stats.Punctuation++
		case model.ClassSpace:
			stats.Spaces++
		default:
			stats.Other++
		}
		occurrences.Add(r)
	})
	if err != nil {
		return model.CharacterStats{}, err
	}
	stats.Occurrences = occurrences.Sorted()
	return stats, nil
}
