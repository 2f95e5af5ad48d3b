// Package model defines shared data structures.
package model

import (
	"time"

	"github.com/verte-zerg/textstat/internal/freq"
)

// Config defines the tunable parameters of an analysis run.
type Config struct {
	Lang         string
	ExtraLetters string
	StopChars    string
	Punctuation  string
	MaxWords     int
	Top          int
	Workers      int
	PassTimeout  time.Duration
}

// BasicStats holds line, word and character counts.
type BasicStats struct {
	Lines      int
	Words      int
	Characters int
	Spaces     int
}

// CharactersAndSpaces returns characters plus spaces.
func (b BasicStats) CharactersAndSpaces() int {
	return b.Characters + b.Spaces
}

// AverageWordsPerLine returns words/lines, or 0 for an empty file.
func (b BasicStats) AverageWordsPerLine() float64 {
	return ratio(b.Words, b.Lines)
}

// AverageCharactersPerWord returns characters/words, or 0 when there are no words.
func (b BasicStats) AverageCharactersPerWord() float64 {
	return ratio(b.Characters, b.Words)
}

// WordStats holds normalized word occurrences and word-length occurrences.
type WordStats struct {
	Occurrences       freq.Map[string]
	LengthOccurrences freq.Map[int]
}

// UniqueWords returns every distinct word, most frequent first.
func (w WordStats) UniqueWords() []string {
	return w.Occurrences.Keys()
}

// OrphanWords returns the words that occurred exactly once.
func (w WordStats) OrphanWords() []string {
	var out []string
	for _, e := range w.Occurrences {
		if e.Count == 1 {
			out = append(out, e.Key)
		}
	}
	return out
}

// LengthSummary describes the spread of word lengths.
type LengthSummary struct {
	Shortest int
	Longest  int
	Average  float64
}

// LengthSummary returns the shortest and longest word length and the
// occurrence-weighted average. All fields are 0 when no words were seen.
func (w WordStats) LengthSummary() LengthSummary {
	var s LengthSummary
	weighted, total := 0, 0
	for i, e := range w.LengthOccurrences {
		if i == 0 || e.Key < s.Shortest {
			s.Shortest = e.Key
		}
		if e.Key > s.Longest {
			s.Longest = e.Key
		}
		weighted += e.Key * e.Count
		total += e.Count
	}
	s.Average = ratio(weighted, total)
	return s
}

// SentenceStats holds sentence segmentation results.
type SentenceStats struct {
	Count        int
	Shortest     string
	Longest      string
	Distribution freq.Map[int]
}

// AverageWordsPerSentence returns the mean sentence length in words, or 0
// when no sentence was found.
func (s SentenceStats) AverageWordsPerSentence() float64 {
	words := 0
	for _, e := range s.Distribution {
		words += e.Key * e.Count
	}
	return ratio(words, s.Count)
}

// CharClass is one of the five character classes.
type CharClass int

// Character classes in reporting order.
const (
	ClassLetter CharClass = iota
	ClassDigit
	ClassPunctuation
	ClassSpace
	ClassOther
	classCount
)

var classNames = [...]string{"Letters", "Digits", "Punctuation", "Spaces", "Other"}

// String returns the display name of the class.
func (c CharClass) String() string {
	if c < 0 || c >= classCount {
		return "Unknown"
	}
	return classNames[c]
}

// Classes lists every class in reporting order.
func Classes() []CharClass {
	return []CharClass{ClassLetter, ClassDigit, ClassPunctuation, ClassSpace, ClassOther}
}

// CharacterStats holds per-class totals and per-character occurrences.
type CharacterStats struct {
	Total       int
	Letters     int
	Digits      int
	Punctuation int
	Spaces      int
	Other       int
	Occurrences freq.Map[rune]
}

// Count returns the total for a class.
func (c CharacterStats) Count(class CharClass) int {
	switch class {
	case ClassLetter:
		return c.Letters
	case ClassDigit:
		return c.Digits
	case ClassPunctuation:
		return c.Punctuation
	case ClassSpace:
		return c.Spaces
	case ClassOther:
		return c.Other
	default:
		return 0
	}
}

// ClassSum returns the sum of the five class totals.
func (c CharacterStats) ClassSum() int {
	return c.Letters + c.Digits + c.Punctuation + c.Spaces + c.Other
}

// CaseCounts returns how many lowercase and uppercase occurrences of the
// given alphabet were seen. Upper is the uppercase form of each member.
func (c CharacterStats) CaseCounts(lower, upper map[rune]struct{}) (int, int) {
	lowerTotal, upperTotal := 0, 0
	for _, e := range c.Occurrences {
		if _, ok := lower[e.Key]; ok {
			lowerTotal += e.Count
		} else if _, ok := upper[e.Key]; ok {
			upperTotal += e.Count
		}
	}
	return lowerTotal, upperTotal
}

// Fingerprint is a word-boundary trigram frequency map.
type Fingerprint struct {
	Trigrams freq.Map[string]
}

// Mass returns the sum of all trigram counts.
func (f Fingerprint) Mass() int {
	return f.Trigrams.Total()
}

// Normalized divides every count by the total mass. It returns nil when the
// fingerprint is empty.
func (f Fingerprint) Normalized() map[string]float64 {
	mass := f.Mass()
	if mass == 0 {
		return nil
	}
	out := make(map[string]float64, len(f.Trigrams))
	for _, e := range f.Trigrams {
		out[e.Key] += float64(e.Count) / float64(mass)
	}
	return out
}

// LanguageScore is one ranked language match.
type LanguageScore struct {
	Language string
	Score    float64
}

// SimilarityResult is a list of language scores sorted by score descending.
type SimilarityResult []LanguageScore

// BestGuess returns the top entry.
func (r SimilarityResult) BestGuess() (LanguageScore, bool) {
	if len(r) == 0 {
		return LanguageScore{}, false
	}
	return r[0], true
}

// ProfileSummary is a persisted overview of one analyzed file.
type ProfileSummary struct {
	ID           int64
	Path         string
	Name         string
	AnalyzedAt   time.Time
	Basic        BasicStats
	UniqueWords  int
	Sentences    int
	Language     string
	LanguageFit  float64
	TopWords     []freq.Entry[string]
	TopLanguages SimilarityResult
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
