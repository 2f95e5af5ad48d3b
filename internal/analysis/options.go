// Package analysis implements the streaming passes that profile a text file.
package analysis

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/verte-zerg/textstat/internal/charset"
	"github.com/verte-zerg/textstat/internal/model"
)

// DefaultMaxWords is the trigram word budget used when none is configured.
const DefaultMaxWords = 65536

// Options holds the resolved character sets and limits for every pass.
type Options struct {
	WordAlphabet charset.Set
	StopChars    charset.Set
	Punctuation  charset.Set
	MaxWords     int
	Workers      int
	PassTimeout  time.Duration
}

// DefaultOptions returns options with the base word alphabet and default sets.
func DefaultOptions() Options {
	return Options{
		WordAlphabet: charset.WordAlphabet(""),
		StopChars:    charset.FromString(charset.DefaultStopChars),
		Punctuation:  charset.FromString(charset.DefaultPunctuation),
		MaxWords:     DefaultMaxWords,
	}
}

// OptionsFromConfig resolves a model.Config into Options. Empty fields fall
// back to the defaults; character-set fields may reference a resource file
// with an "@" prefix.
func OptionsFromConfig(cfg model.Config) (Options, error) {
	opts := DefaultOptions()

	extra := cfg.ExtraLetters
	if extra == "" {
		extra = charset.ExtraLetters(cfg.Lang)
	}
	alphabet, err := charset.Resolve(extra)
	if err != nil {
		return Options{}, err
	}
	opts.WordAlphabet = charset.WordAlphabet(alphabet.String())

	if cfg.StopChars != "" {
		if opts.StopChars, err = charset.Resolve(cfg.StopChars); err != nil {
			return Options{}, err
		}
	}
	if cfg.Punctuation != "" {
		if opts.Punctuation, err = charset.Resolve(cfg.Punctuation); err != nil {
			return Options{}, err
		}
	}
	if cfg.MaxWords < 0 {
		return Options{}, fmt.Errorf("max words must be >= 0")
	}
	if cfg.MaxWords > 0 {
		opts.MaxWords = cfg.MaxWords
	}
	opts.Workers = cfg.Workers
	opts.PassTimeout = cfg.PassTimeout
	return opts, nil
}

func newLowerCaser() cases.Caser {
	return cases.Lower(language.Und)
}
