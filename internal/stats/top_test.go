package stats

import (
	"reflect"
	"testing"

	"github.com/verte-zerg/textstat/internal/freq"
)

func sampleMap() freq.Map[string] {
	return freq.FromEntries([]freq.Entry[string]{
		{Key: "b", Count: 4},
		{Key: "a", Count: 4},
		{Key: "c", Count: 2},
		{Key: "d", Count: 1},
	})
}

func TestTopN(t *testing.T) {
	top := TopN(sampleMap(), 2, nil)
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Key != "b" || top[1].Key != "a" {
		t.Fatalf("unexpected order: %v", top)
	}
}

func TestTopNClampsToMapSize(t *testing.T) {
	m := sampleMap()
	top := TopN(m, 10, nil)
	if !reflect.DeepEqual(top, m) {
		t.Fatalf("expected whole map %v, got %v", m, top)
	}
	top[0].Count = 99
	if m[0].Count == 99 {
		t.Fatalf("expected TopN to copy entries")
	}
}

func TestTopNWithConstraint(t *testing.T) {
	only := map[string]struct{}{"d": {}, "a": {}, "z": {}}
	top := TopN(sampleMap(), 5, only)
	if len(top) != 2 || top[0].Key != "a" || top[1].Key != "d" {
		t.Fatalf("unexpected constrained result: %v", top)
	}

	top = TopN(sampleMap(), 1, only)
	if len(top) != 1 || top[0].Key != "a" {
		t.Fatalf("unexpected constrained result: %v", top)
	}
}

func TestTopNEmpty(t *testing.T) {
	if top := TopN(sampleMap(), 0, nil); top != nil {
		t.Fatalf("expected nil for n=0, got %v", top)
	}
	if top := TopN[string](nil, 3, nil); top != nil {
		t.Fatalf("expected nil for empty map, got %v", top)
	}
}
