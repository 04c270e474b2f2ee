package vector

import (
	"errors"
	"math"
	"sort"

	"github.com/hyperjump/kotoba/internal/analysis"
)

// ErrEmptyCorpus is returned when building a vector space from zero documents.
var ErrEmptyCorpus = errors.New("empty corpus")

// Build fits a vocabulary over documents (one glossary word each) and returns
// it with the term matrix, where row i is document i.
//
// Features are the 1..3-gram features of each normalized document; columns are
// assigned in lexical order of the feature strings so identical input yields
// identical output. Weights are raw term counts times the smoothed IDF
// ln((1+N)/(1+df))+1, and every row is L2-normalized.
func Build(documents []string) (*Vocabulary, *Matrix, error) {
	if len(documents) == 0 {
		return nil, nil, ErrEmptyCorpus
	}
	docFeatures := make([][]string, len(documents))
	df := make(map[string]int)
	for i, doc := range documents {
		feats := analysis.TextFeatures(doc)
		docFeatures[i] = feats
		seen := make(map[string]struct{}, len(feats))
		for _, f := range feats {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			df[f]++
		}
	}

	features := make([]string, 0, len(df))
	for f := range df {
		features = append(features, f)
	}
	sort.Strings(features)
	n := float64(len(documents))
	idf := make([]float64, len(features))
	for i, f := range features {
		idf[i] = math.Log((1+n)/(1+float64(df[f]))) + 1
	}
	vocab, err := NewVocabulary(features, idf)
	if err != nil {
		return nil, nil, err
	}

	rows := make([]SparseVector, len(documents))
	for i, feats := range docFeatures {
		rows[i] = vocab.vectorize(feats)
	}
	matrix, err := NewMatrix(vocab.Size(), rows)
	if err != nil {
		return nil, nil, err
	}
	return vocab, matrix, nil
}
