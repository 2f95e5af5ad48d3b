package analysis

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/model"
)

// Basic counts lines, whitespace-delimited words, non-space characters and
// spaces. Every line contributes one extra space standing in for its
// stripped terminator.
func Basic(ctx context.Context, src corpus.Source) (model.BasicStats, error) {
	var stats model.BasicStats
	err := src.EachLine(ctx, func(line string) error {
		line = corpus.TrimTerminator(line)
		stats.Lines++

		words := strings.Fields(line)
		stats.Words += len(words)
		for _, word := range words {
			stats.Characters += utf8.RuneCountInString(word)
		}
		stats.Spaces += strings.Count(line, " ") + 1
		return nil
	})
	if err != nil {
		return model.BasicStats{}, err
	}
	return stats, nil
}
