package glossary

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/storage"
	"github.com/hyperjump/kotoba/pkg/utils"
)

const defaultBatchSize = 500

// Result summarizes one import.
type Result struct {
	Source   string `json:"source"`
	Parsed   int    `json:"parsed"`
	Inserted int    `json:"inserted"`
	// Duplicates counts parsed terms whose word was already stored.
	Duplicates int   `json:"duplicates"`
	Duration   int64 `json:"duration_ms"`
}

// Importer writes parsed glossary terms into the corpus store. Existing words
// are never overwritten.
type Importer struct {
	store     storage.Storage
	batchSize int
	logger    *zap.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithLogger sets the importer logger.
func WithLogger(l *zap.Logger) ImporterOption {
	return func(im *Importer) { im.logger = utils.OrNop(l) }
}

// WithBatchSize sets how many terms go into one insert transaction.
func WithBatchSize(n int) ImporterOption {
	return func(im *Importer) {
		if n > 0 {
			im.batchSize = n
		}
	}
}

// NewImporter creates an importer over store.
func NewImporter(store storage.Storage, opts ...ImporterOption) *Importer {
	im := &Importer{store: store, batchSize: defaultBatchSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportFile parses the glossary at path and inserts its terms.
func (im *Importer) ImportFile(ctx context.Context, path string) (*Result, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("unsupported glossary file %s (want one of %v)", path, Extensions)
	}
	terms, err := ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return im.ImportTerms(ctx, path, terms)
}

// ImportTerms inserts terms in batches. source only labels the result.
func (im *Importer) ImportTerms(ctx context.Context, source string, terms []models.Term) (*Result, error) {
	start := time.Now()
	res := &Result{Source: source, Parsed: len(terms)}
	for lo := 0; lo < len(terms); lo += im.batchSize {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		hi := min(lo+im.batchSize, len(terms))
		n, err := im.store.InsertTerms(ctx, terms[lo:hi])
		if err != nil {
			return res, fmt.Errorf("failed to insert terms: %w", err)
		}
		res.Inserted += n
	}
	res.Duplicates = res.Parsed - res.Inserted
	res.Duration = time.Since(start).Milliseconds()

	im.logger.Info("Glossary imported",
		zap.String("source", source),
		zap.Int("parsed", res.Parsed),
		zap.Int("inserted", res.Inserted),
		zap.Int("duplicates", res.Duplicates))
	return res, nil
}

// ImportSample inserts the built-in sample glossary.
func (im *Importer) ImportSample(ctx context.Context) (*Result, error) {
	return im.ImportTerms(ctx, "sample", SampleTerms())
}
