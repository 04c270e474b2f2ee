package search

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hyperjump/kotoba/internal/modelcache"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/vector"
)

// Model sources.
const (
	SourceBuild = "build"
	SourceCache = "cache"
)

// Model is an immutable retrieval snapshot: the corpus terms in storage order
// and the vector space built over their words. Row i of Matrix is Terms[i].
type Model struct {
	Terms       []models.Term
	Vocabulary  *vector.Vocabulary
	Matrix      *vector.Matrix
	Fingerprint string
	BuildID     string
	BuiltAt     time.Time
	Source      string
}

// BuildModel builds a model from a corpus snapshot.
func BuildModel(terms []models.Term) (*Model, error) {
	words := make([]string, len(terms))
	for i, t := range terms {
		words[i] = t.Word
	}
	vocab, matrix, err := vector.Build(words)
	if err != nil {
		return nil, err
	}
	return &Model{
		Terms:       terms,
		Vocabulary:  vocab,
		Matrix:      matrix,
		Fingerprint: modelcache.Fingerprint(terms),
		BuildID:     uuid.NewString(),
		BuiltAt:     time.Now().UTC(),
		Source:      SourceBuild,
	}, nil
}

// modelFromArtifacts pairs loaded artifacts with the snapshot they were
// validated against.
func modelFromArtifacts(terms []models.Term, a *modelcache.Artifacts) (*Model, error) {
	if a.Matrix.Rows() != len(terms) {
		return nil, fmt.Errorf("%w: %d rows for %d terms", modelcache.ErrCorruptModel, a.Matrix.Rows(), len(terms))
	}
	return &Model{
		Terms:       terms,
		Vocabulary:  a.Vocabulary,
		Matrix:      a.Matrix,
		Fingerprint: a.Manifest.Fingerprint,
		BuildID:     a.Manifest.BuildID,
		BuiltAt:     a.Manifest.BuiltAt,
		Source:      SourceCache,
	}, nil
}

func (m *Model) artifacts() *modelcache.Artifacts {
	return &modelcache.Artifacts{
		Vocabulary: m.Vocabulary,
		Matrix:     m.Matrix,
		Manifest: modelcache.Manifest{
			Fingerprint: m.Fingerprint,
			BuildID:     m.BuildID,
			BuiltAt:     m.BuiltAt,
		},
	}
}
