// Package storage defines the persistence interface for glossary terms.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kotoba/internal/models"
)

// ErrTermNotFound is returned when a looked-up word is not in the store.
var ErrTermNotFound = errors.New("term not found")

// Storage is the corpus store. ListTerms returns terms in a stable order that
// only changes when terms are inserted.
type Storage interface {
	// InsertTerms adds terms, silently skipping words that already exist.
	// It returns the number of terms actually inserted.
	InsertTerms(ctx context.Context, terms []models.Term) (int, error)
	ListTerms(ctx context.Context) ([]models.Term, error)
	GetTerm(ctx context.Context, word string) (*models.Term, error)
	CountTerms(ctx context.Context) (int64, error)

	Close() error
}
