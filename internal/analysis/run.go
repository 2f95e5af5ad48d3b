package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/langid"
	"github.com/verte-zerg/textstat/internal/model"
)

// Run executes every pass over src and assembles the results into a
// corpus.File. Passes run concurrently, each on its own read handle, and are
// merged only after all of them finished. The language slot is filled when
// lib holds references and the fingerprint is not empty.
func Run(ctx context.Context, src corpus.Source, opts Options, lib *langid.Library, logger *slog.Logger) (*corpus.File, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("file", src.Name())

	var (
		basic     model.BasicStats
		words     model.WordStats
		sentences model.SentenceStats
		chars     model.CharacterStats
		trigrams  model.Fingerprint
	)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	pass := func(name string, fn func(context.Context) error) {
		g.Go(func() error {
			pctx := gctx
			if opts.PassTimeout > 0 {
				var cancel context.CancelFunc
				pctx, cancel = context.WithTimeout(gctx, opts.PassTimeout)
				defer cancel()
			}
			start := time.Now()
			logger.Debug("pass started", "pass", name)
			if err := fn(pctx); err != nil {
				return fmt.Errorf("%s pass failed: %w", name, err)
			}
			logger.Debug("pass finished", "pass", name, "elapsed", time.Since(start))
			return nil
		})
	}

	pass("basic", func(ctx context.Context) (err error) {
		basic, err = Basic(ctx, src)
		return err
	})
	pass("words", func(ctx context.Context) (err error) {
		words, err = Words(ctx, src, opts.WordAlphabet)
		return err
	})
	pass("sentences", func(ctx context.Context) (err error) {
		sentences, err = Sentences(ctx, src, opts.StopChars)
		return err
	})
	pass("characters", func(ctx context.Context) (err error) {
		chars, err = Characters(ctx, src, opts.Punctuation)
		return err
	})
	pass("trigrams", func(ctx context.Context) (err error) {
		trigrams, err = Trigrams(ctx, src, opts.MaxWords)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	file := corpus.NewFile(src)
	if err := file.SetBasic(basic); err != nil {
		return nil, err
	}
	if err := file.SetWords(words); err != nil {
		return nil, err
	}
	if err := file.SetSentences(sentences); err != nil {
		return nil, err
	}
	if err := file.SetCharacters(chars); err != nil {
		return nil, err
	}

	if lib.Len() == 0 {
		logger.Debug("no reference languages loaded")
		return file, nil
	}
	result, err := langid.Identify(trigrams, lib)
	if err != nil {
		if errors.Is(err, langid.ErrZeroNorm) {
			logger.Warn("language not identified", "error", err)
			return file, nil
		}
		return nil, err
	}
	if err := file.SetLanguages(result); err != nil {
		return nil, err
	}
	return file, nil
}

// Fingerprint validates path and extracts its trigram fingerprint.
func Fingerprint(ctx context.Context, path string, maxWords int) (model.Fingerprint, error) {
	src, err := corpus.Validate(path)
	if err != nil {
		return model.Fingerprint{}, err
	}
	return Trigrams(ctx, src, maxWords)
}
