// Package vector provides the n-gram TF-IDF vector space over glossary terms:
// vocabulary fitting, sparse term vectors, and their binary encoding.
package vector

import (
	"fmt"
	"sort"

	"github.com/hyperjump/kotoba/internal/analysis"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// Vocabulary maps n-gram features to column indices and IDF weights.
// It is immutable once built.
type Vocabulary struct {
	index    map[string]int
	features []string
	idf      []float64
}

// NewVocabulary builds a vocabulary from features (column order) and their IDF weights.
// Features must be unique.
func NewVocabulary(features []string, idf []float64) (*Vocabulary, error) {
	if len(features) != len(idf) {
		return nil, fmt.Errorf("features and idf length mismatch: %d vs %d", len(features), len(idf))
	}
	v := &Vocabulary{
		index:    make(map[string]int, len(features)),
		features: append([]string(nil), features...),
		idf:      append([]float64(nil), idf...),
	}
	for i, f := range features {
		if _, dup := v.index[f]; dup {
			return nil, fmt.Errorf("duplicate feature %q", f)
		}
		v.index[f] = i
	}
	return v, nil
}

// Size returns the number of features.
func (v *Vocabulary) Size() int {
	return len(v.features)
}

// Index returns the column of feature.
func (v *Vocabulary) Index(feature string) (int, bool) {
	i, ok := v.index[feature]
	return i, ok
}

// Feature returns the feature at column i.
func (v *Vocabulary) Feature(i int) string {
	return v.features[i]
}

// IDF returns the inverse document frequency of column i.
func (v *Vocabulary) IDF(i int) float64 {
	return v.idf[i]
}

// Features returns a copy of all features in column order.
func (v *Vocabulary) Features() []string {
	return append([]string(nil), v.features...)
}

// Transform projects text into the vocabulary's space: normalized, split into
// n-grams, weighted by tf*idf and L2-normalized. Unknown n-grams are ignored,
// so the result may be the zero vector.
func (v *Vocabulary) Transform(text string) SparseVector {
	return v.vectorize(analysis.TextFeatures(text))
}

func (v *Vocabulary) vectorize(features []string) SparseVector {
	counts := make(map[int]float64)
	for _, f := range features {
		if i, ok := v.index[f]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}
	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for i := range counts {
		vec.Indices = append(vec.Indices, i)
	}
	sort.Ints(vec.Indices)
	for _, i := range vec.Indices {
		vec.Values = append(vec.Values, counts[i]*v.idf[i])
	}
	utils.NormalizeL2(vec.Values)
	return vec
}
