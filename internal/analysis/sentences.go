package analysis

import (
	"context"
	"strings"

	"github.com/verte-zerg/textstat/internal/charset"
	"github.com/verte-zerg/textstat/internal/corpus"
	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

// Segmenter splits a token stream into sentences. Its buffer survives
// across lines; words still buffered when the stream ends are not a sentence.
type Segmenter struct {
	stop     charset.Set
	buffer   []string
	shortest []string
	longest  []string
	count    int
	lengths  *freq.Counter[int]
}

// NewSegmenter returns a Segmenter ending sentences on any rune in stop.
func NewSegmenter(stop charset.Set) *Segmenter {
	return &Segmenter{stop: stop, lengths: freq.NewCounter[int]()}
}

// Feed appends a token and closes the sentence when it holds a stop rune.
func (s *Segmenter) Feed(token string) {
	s.buffer = append(s.buffer, token)
	if !s.stop.ContainsAny(token) {
		return
	}

	n := len(s.buffer)
	if len(s.shortest) == 0 || n < len(s.shortest) {
		s.shortest = append([]string(nil), s.buffer...)
	}
	if n > len(s.longest) {
		s.longest = append([]string(nil), s.buffer...)
	}
	s.lengths.Add(n)
	s.count++
	s.buffer = s.buffer[:0]
}

// Pending returns the number of buffered words not yet in a sentence.
func (s *Segmenter) Pending() int {
	return len(s.buffer)
}

// Result returns the sentences seen so far. Pending words are ignored.
func (s *Segmenter) Result() model.SentenceStats {
	return model.SentenceStats{
		Count:        s.count,
		Shortest:     strings.Join(s.shortest, " "),
		Longest:      strings.Join(s.longest, " "),
		Distribution: s.lengths.Sorted(),
	}
}

// Sentences segments the whole file into sentences.
func Sentences(ctx context.Context, src corpus.Source, stop charset.Set) (model.SentenceStats, error) {
	seg := NewSegmenter(stop)
	err := src.EachLine(ctx, func(line string) error {
		for _, token := range strings.Fields(line) {
			seg.Feed(token)
		}
		return nil
	})
	if err != nil {
		return model.SentenceStats{}, err
	}
	return seg.Result(), nil
}
