package stats

import (
	"os"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/textstat/internal/charset"
	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/model"
)

const terminalWidthBackup = 80

// ReportOptions controls profile rendering.
type ReportOptions struct {
	// Top limits ranked tables. Zero uses the default of 10.
	Top int
	// Width bounds long cells such as sentences. Zero uses the terminal width.
	Width int
	// Lower and Upper restrict the letter table and case counts. Nil skips both.
	Lower charset.Set
	Upper charset.Set
}

func (o ReportOptions) withDefaults() ReportOptions {
	if o.Top <= 0 {
		o.Top = defaultTop
	}
	if o.Width <= 0 {
		o.Width = terminalWidth()
	}
	return o
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// Summarize condenses a fully analyzed file into the record kept in history.
// The language fields stay empty when no language ranking was stored.
func Summarize(file *corpus.File, top int, analyzedAt time.Time) (model.ProfileSummary, error) {
	if top <= 0 {
		top = defaultTop
	}
	basic, err := file.Basic()
	if err != nil {
		return model.ProfileSummary{}, err
	}
	words, err := file.Words()
	if err != nil {
		return model.ProfileSummary{}, err
	}
	sentences, err := file.Sentences()
	if err != nil {
		return model.ProfileSummary{}, err
	}

	summary := model.ProfileSummary{
		Path:        file.Path(),
		Name:        file.Name(),
		AnalyzedAt:  analyzedAt,
		Basic:       basic,
		UniqueWords: len(words.Occurrences),
		Sentences:   sentences.Count,
		TopWords:    TopN(words.Occurrences, top, nil),
	}
	if languages, err := file.Languages(); err == nil {
		if best, ok := languages.BestGuess(); ok {
			summary.Language = best.Language
			summary.LanguageFit = best.Score
		}
		if len(languages) > top {
			languages = languages[:top]
		}
		summary.TopLanguages = languages
	}
	return summary, nil
}
