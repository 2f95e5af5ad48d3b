package corpus

import (
	"fmt"

	"github.com/verte-zerg/textstat/internal/model"
)

// File is the aggregate of one analyzed source. Each result slot stays empty
// until its pass is stored; queries over an empty slot return ErrPassNotRun.
type File struct {
	source    Source
	basic     *model.BasicStats
	words     *model.WordStats
	sentences *model.SentenceStats
	chars     *model.CharacterStats
	languages model.SimilarityResult
	langDone  bool
}

// NewFile creates an empty aggregate for a validated source.
func NewFile(src Source) *File {
	return &File{source: src}
}

// Path returns the source path.
func (f *File) Path() string {
	return f.source.Path()
}

// Name returns the source display name.
func (f *File) Name() string {
	return f.source.Name()
}

// SetBasic stores the basic metrics pass.
func (f *File) SetBasic(stats model.BasicStats) error {
	if stats.Lines < 0 || stats.Words < 0 || stats.Characters < 0 || stats.Spaces < 0 {
		return fmt.Errorf("%w: negative basic count %+v", ErrMalformedResult, stats)
	}
	f.basic = &stats
	return nil
}

// SetWords stores the word frequency pass.
func (f *File) SetWords(stats model.WordStats) error {
	if stats.Occurrences.Total() != stats.LengthOccurrences.Total() {
		return fmt.Errorf("%w: %d words but %d word lengths", ErrMalformedResult,
			stats.Occurrences.Total(), stats.LengthOccurrences.Total())
	}
	f.words = &stats
	return nil
}

// SetSentences stores the sentence pass.
func (f *File) SetSentences(stats model.SentenceStats) error {
	if stats.Count != stats.Distribution.Total() {
		return fmt.Errorf("%w: %d sentences but distribution holds %d", ErrMalformedResult,
			stats.Count, stats.Distribution.Total())
	}
	f.sentences = &stats
	return nil
}

// SetCharacters stores the character classification pass.
func (f *File) SetCharacters(stats model.CharacterStats) error {
	if stats.ClassSum() != stats.Total || stats.Occurrences.Total() != stats.Total {
		return fmt.Errorf("%w: class totals %d, occurrences %d, total %d", ErrMalformedResult,
			stats.ClassSum(), stats.Occurrences.Total(), stats.Total)
	}
	f.chars = &stats
	return nil
}

// SetLanguages stores the language ranking.
func (f *File) SetLanguages(result model.SimilarityResult) error {
	for i := 1; i < len(result); i++ {
		if result[i].Score > result[i-1].Score {
			return fmt.Errorf("%w: language scores not sorted", ErrMalformedResult)
		}
	}
	f.languages = result
	f.langDone = true
	return nil
}

// Basic returns the basic metrics.
func (f *File) Basic() (model.BasicStats, error) {
	if f.basic == nil {
		return model.BasicStats{}, missing("basic")
	}
	return *f.basic, nil
}

// Words returns the word frequency results.
func (f *File) Words() (model.WordStats, error) {
	if f.words == nil {
		return model.WordStats{}, missing("word frequency")
	}
	return *f.words, nil
}

// Sentences returns the sentence results.
func (f *File) Sentences() (model.SentenceStats, error) {
	if f.sentences == nil {
		return model.SentenceStats{}, missing("sentence")
	}
	return *f.sentences, nil
}

// Characters returns the character classification results.
func (f *File) Characters() (model.CharacterStats, error) {
	if f.chars == nil {
		return model.CharacterStats{}, missing("character")
	}
	return *f.chars, nil
}

// Languages returns the language ranking.
func (f *File) Languages() (model.SimilarityResult, error) {
	if !f.langDone {
		return nil, missing("language")
	}
	return f.languages, nil
}

// MostLikelyLanguage returns the best guess of the language ranking.
func (f *File) MostLikelyLanguage() (model.LanguageScore, error) {
	result, err := f.Languages()
	if err != nil {
		return model.LanguageScore{}, err
	}
	best, ok := result.BestGuess()
	if !ok {
		return model.LanguageScore{}, fmt.Errorf("%w: no reference languages scored", ErrPassNotRun)
	}
	return best, nil
}

// Complete reports whether every pass has been stored.
func (f *File) Complete() bool {
	return f.basic != nil && f.words != nil && f.sentences != nil && f.chars != nil && f.langDone
}

func missing(pass string) error {
	return fmt.Errorf("%w: %s", ErrPassNotRun, pass)
}
