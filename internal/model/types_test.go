package model

import (
	"math"
	"testing"

	"github.com/verte-zerg/textstat/internal/freq"
)

func TestAveragesDefaultToZero(t *testing.T) {
	var b BasicStats
	if b.AverageWordsPerLine() != 0 || b.AverageCharactersPerWord() != 0 {
		t.Fatalf("expected zero averages for empty stats")
	}
	var s SentenceStats
	if s.AverageWordsPerSentence() != 0 {
		t.Fatalf("expected zero words per sentence")
	}
	var w WordStats
	if got := w.LengthSummary(); got != (LengthSummary{}) {
		t.Fatalf("expected zero length summary, got %+v", got)
	}
}

func TestBasicAverages(t *testing.T) {
	b := BasicStats{Lines: 2, Words: 6, Characters: 21, Spaces: 6}
	if b.AverageWordsPerLine() != 3 {
		t.Fatalf("expected 3 words per line, got %f", b.AverageWordsPerLine())
	}
	if b.AverageCharactersPerWord() != 3.5 {
		t.Fatalf("expected 3.5 chars per word, got %f", b.AverageCharactersPerWord())
	}
	if b.CharactersAndSpaces() != 27 {
		t.Fatalf("expected 27, got %d", b.CharactersAndSpaces())
	}
}

func TestWordStatsQueries(t *testing.T) {
	w := WordStats{
		Occurrences:       freq.Map[string]{{Key: "the", Count: 3}, {Key: "cat", Count: 1}, {Key: "sat", Count: 1}},
		LengthOccurrences: freq.Map[int]{{Key: 3, Count: 4}, {Key: 5, Count: 1}, {Key: 1, Count: 1}},
	}
	orphans := w.OrphanWords()
	if len(orphans) != 2 || orphans[0] != "cat" || orphans[1] != "sat" {
		t.Fatalf("unexpected orphans: %v", orphans)
	}
	s := w.LengthSummary()
	if s.Shortest != 1 || s.Longest != 5 {
		t.Fatalf("unexpected bounds: %+v", s)
	}
	if math.Abs(s.Average-18.0/6.0) > 1e-9 {
		t.Fatalf("expected average 3, got %f", s.Average)
	}
}

func TestFingerprintNormalized(t *testing.T) {
	f := Fingerprint{Trigrams: freq.Map[string]{{Key: "$ele", Count: 3}, {Key: "ant$", Count: 1}}}
	if f.Mass() != 4 {
		t.Fatalf("expected mass 4, got %d", f.Mass())
	}
	n := f.Normalized()
	if n["$ele"] != 0.75 || n["ant$"] != 0.25 {
		t.Fatalf("unexpected normalized vector: %v", n)
	}
	if (Fingerprint{}).Normalized() != nil {
		t.Fatalf("expected nil for empty fingerprint")
	}
}

func TestCaseCounts(t *testing.T) {
	c := CharacterStats{Occurrences: freq.Map[rune]{{Key: 'a', Count: 4}, {Key: 'A', Count: 2}, {Key: '1', Count: 9}}}
	lower := map[rune]struct{}{'a': {}}
	upper := map[rune]struct{}{'A': {}}
	l, u := c.CaseCounts(lower, upper)
	if l != 4 || u != 2 {
		t.Fatalf("expected 4/2, got %d/%d", l, u)
	}
}
