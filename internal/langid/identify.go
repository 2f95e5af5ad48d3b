package langid

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/textstat/internal/freq"
	"github.com/verte-zerg/textstat/internal/model"
)

// Identify scores fp against every reference of lib by cosine similarity and
// returns the scores sorted descending. Equal scores keep library order.
func Identify(fp model.Fingerprint, lib *Library) (model.SimilarityResult, error) {
	query := fp.Normalized()
	if query == nil {
		return nil, fmt.Errorf("%w: query", ErrZeroNorm)
	}
	if lib.Len() == 0 {
		return nil, ErrNoReferences
	}

	result := make(model.SimilarityResult, 0, lib.Len())
	for _, ref := range lib.refs {
		vec := ref.Fingerprint.Normalized()
		if vec == nil {
			return nil, fmt.Errorf("%w: reference %s", ErrZeroNorm, ref.Language)
		}
		result = append(result, model.LanguageScore{
			Language: ref.Language,
			Score:    cosine(query, vec),
		})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Score > result[j].Score
	})
	return result, nil
}

// CompareWords returns the cosine similarity of two word-occurrence maps.
func CompareWords(a, b freq.Map[string]) (float64, error) {
	va := model.Fingerprint{Trigrams: a}.Normalized()
	vb := model.Fingerprint{Trigrams: b}.Normalized()
	if va == nil || vb == nil {
		return 0, ErrZeroNorm
	}
	return cosine(va, vb), nil
}

// Cosine returns dot(a, b) / (|a| * |b|). The dot product runs over the
// union of keys with missing entries as zero; each norm covers its own
// vector in full.
func Cosine(a, b map[string]float64) (float64, error) {
	if norm(a) == 0 || norm(b) == 0 {
		return 0, ErrZeroNorm
	}
	return cosine(a, b), nil
}

func cosine(a, b map[string]float64) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	dot := 0.0
	for key, x := range small {
		dot += x * large[key]
	}
	score := dot / (norm(a) * norm(b))
	return math.Min(score, 1)
}

func norm(v map[string]float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
