// Package freq provides insertion-ordered occurrence counters and the
// count-sorted frequency maps built from them.
package freq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Entry is a single key and its occurrence count.
type Entry[K comparable] struct {
	Key   K
	Count int
}

// Map is a frequency map materialized in count-descending order.
// Equal counts keep the order in which keys were first seen.
type Map[K comparable] []Entry[K]

// Counter accumulates occurrences while remembering first-seen order.
type Counter[K comparable] struct {
	index   map[K]int
	entries []Entry[K]
}

// NewCounter returns an empty Counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{index: make(map[K]int)}
}

// Add records one occurrence of key.
func (c *Counter[K]) Add(key K) {
	c.AddN(key, 1)
}

// AddN records n occurrences of key.
func (c *Counter[K]) AddN(key K, n int) {
	if i, ok := c.index[key]; ok {
		c.entries[i].Count += n
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry[K]{Key: key, Count: n})
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.entries)
}

// Sorted returns a copy of the counts ordered by count descending.
func (c *Counter[K]) Sorted() Map[K] {
	out := make(Map[K], len(c.entries))
	copy(out, c.entries)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// FromEntries builds a Map from entries in the given order, summing
// duplicate keys, then applies the count-descending stable sort.
func FromEntries[K comparable](entries []Entry[K]) Map[K] {
	c := NewCounter[K]()
	for _, e := range entries {
		c.AddN(e.Key, e.Count)
	}
	return c.Sorted()
}

// Total returns the sum of all counts.
func (m Map[K]) Total() int {
	total := 0
	for _, e := range m {
		total += e.Count
	}
	return total
}

// Get returns the count stored for key.
func (m Map[K]) Get(key K) (int, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Count, true
		}
	}
	return 0, false
}

// Keys returns the keys in map order.
func (m Map[K]) Keys() []K {
	keys := make([]K, len(m))
	for i, e := range m {
		keys[i] = e.Key
	}
	return keys
}

// MarshalJSON encodes the map as a JSON object whose members keep map order.
func (m Map[K]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fmt.Sprint(e.Key))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
