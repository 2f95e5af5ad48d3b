// Package stats contains ranking helpers and plain-text reporting.
package stats

import "github.com/verte-zerg/textstat/internal/freq"

// TopN returns the first n entries of m, which must already be sorted by
// count descending. When only is non-nil, entries whose key is not in only
// are skipped and relative order is kept. n larger than the result is clamped.
func TopN[K comparable](m freq.Map[K], n int, only map[K]struct{}) freq.Map[K] {
	if n <= 0 || len(m) == 0 {
		return nil
	}
	if only == nil {
		if n > len(m) {
			n = len(m)
		}
		out := make(freq.Map[K], n)
		copy(out, m[:n])
		return out
	}
	out := make(freq.Map[K], 0, min(n, len(m)))
	for _, e := range m {
		if _, ok := only[e.Key]; !ok {
			continue
		}
		out = append(out, e)
		if len(out) == n {
			break
		}
	}
	return out
}
