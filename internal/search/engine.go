// Package search provides the retrieval engine: it owns the active model,
// answers top-K queries against it and rebuilds it from the corpus store.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/hyperjump/kotoba/internal/metrics"
	"github.com/hyperjump/kotoba/internal/modelcache"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/ranking"
	"github.com/hyperjump/kotoba/internal/storage"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// ErrNotInitialized is returned by Retrieve before any model was built or loaded.
var ErrNotInitialized = errors.New("retrieval engine not initialized")

// Engine serves retrievals from an immutable Model that is swapped atomically
// on rebuild, so readers never block and never observe a partial model.
type Engine struct {
	store   storage.Storage
	cache   *modelcache.Cache
	logger  *zap.Logger
	metrics *metrics.Metrics

	model atomic.Pointer[Model]
	group singleflight.Group
	// mu serializes everything that replaces the model or writes the cache.
	mu sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = utils.OrNop(l) }
}

// WithMetrics records retrieval and model metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates an engine over store. cache may be nil, in which case
// models are never persisted.
func NewEngine(store storage.Storage, cache *modelcache.Cache, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		cache:  cache,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize loads the saved model for the current corpus snapshot. When the
// cache has no model, or a stale or corrupt one, it rebuilds from the store
// and saves the result.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	terms, err := e.store.ListTerms(ctx)
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}

	if e.cache != nil {
		fingerprint := modelcache.Fingerprint(terms)
		a, err := e.cache.Load(fingerprint)
		if err == nil {
			m, err := modelFromArtifacts(terms, a)
			if err == nil {
				e.install(m)
				return nil
			}
			e.logger.Warn("Saved model does not fit corpus, rebuilding", zap.Error(err))
		} else if isRecoverable(err) {
			e.logger.Info("No usable saved model, rebuilding", zap.String("reason", err.Error()))
		} else {
			return fmt.Errorf("failed to load model: %w", err)
		}
	}

	_, err = e.buildAndSave(terms)
	return err
}

// Rebuild reads a fresh snapshot from the store, builds a new model, swaps it
// in and saves it. Concurrent calls that read the same snapshot share one
// build; a caller whose snapshot differs waits for its own. When saving fails
// the new model is still active and the save error is returned.
func (e *Engine) Rebuild(ctx context.Context) (*Model, error) {
	// The build outlives any single caller that joined it.
	ctx = context.WithoutCancel(ctx)
	terms, err := e.store.ListTerms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}
	v, err, shared := e.group.Do(modelcache.Fingerprint(terms), func() (interface{}, error) {
		e.mu.Lock()
		defer e.mu.Unlock()
		// Re-read under the lock so a build queued behind another never
		// installs an older snapshot than the one already active.
		terms, err := e.store.ListTerms(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus: %w", err)
		}
		return e.buildAndSave(terms)
	})
	if shared {
		e.logger.Debug("Joined in-flight rebuild")
	}
	m, _ := v.(*Model)
	return m, err
}

// Refresh rebuilds only when the stored corpus no longer matches the active
// model. It reports whether a rebuild happened.
func (e *Engine) Refresh(ctx context.Context) (bool, error) {
	terms, err := e.store.ListTerms(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read corpus: %w", err)
	}
	if m := e.model.Load(); m != nil && m.Fingerprint == modelcache.Fingerprint(terms) {
		return false, nil
	}
	if _, err := e.Rebuild(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// buildAndSave must be called with mu held.
func (e *Engine) buildAndSave(terms []models.Term) (*Model, error) {
	start := time.Now()
	m, err := BuildModel(terms)
	e.metrics.ObserveBuild(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}
	e.logger.Info("Model built",
		zap.String("build_id", m.BuildID),
		zap.Int("terms", m.Matrix.Rows()),
		zap.Int("features", m.Vocabulary.Size()),
		zap.Duration("duration", time.Since(start)))
	e.install(m)

	if e.cache == nil {
		return m, nil
	}
	if _, err := e.cache.Save(m.artifacts()); err != nil {
		e.logger.Error("Failed to save model", zap.Error(err))
		return m, fmt.Errorf("failed to save model: %w", err)
	}
	return m, nil
}

func (e *Engine) install(m *Model) {
	e.model.Store(m)
	e.metrics.ObserveModel(m.Source, m.Matrix.Rows(), m.Vocabulary.Size())
}

// SetModel installs a model built elsewhere, replacing the active one.
func (e *Engine) SetModel(m *Model) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.install(m)
}

// Model returns the active model, or nil before initialization.
func (e *Engine) Model() *Model {
	return e.model.Load()
}

// Retrieve returns up to k terms ranked by similarity to query. k <= 0 yields
// no matches. Query text never causes an error; text with no known n-grams
// scores 0 against every term.
func (e *Engine) Retrieve(ctx context.Context, query string, k int) ([]models.Match, error) {
	m := e.model.Load()
	if m == nil {
		return nil, ErrNotInitialized
	}
	start := time.Now()
	top := ranking.TopK(m.Vocabulary.Transform(query), m.Matrix, k)
	matches := make([]models.Match, len(top))
	for i, s := range top {
		t := m.Terms[s.Index]
		matches[i] = models.Match{Term: t.Word, Definition: t.Definition, Score: s.Score}
	}
	e.metrics.ObserveRetrieval(time.Since(start))
	return matches, nil
}

// Status describes the active model.
type Status struct {
	Initialized bool      `json:"initialized"`
	BuildID     string    `json:"build_id,omitempty"`
	BuiltAt     time.Time `json:"built_at,omitempty"`
	Source      string    `json:"source,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Terms       int       `json:"terms"`
	Features    int       `json:"features"`
}

// Status reports on the active model.
func (e *Engine) Status() Status {
	m := e.model.Load()
	if m == nil {
		return Status{}
	}
	return Status{
		Initialized: true,
		BuildID:     m.BuildID,
		BuiltAt:     m.BuiltAt,
		Source:      m.Source,
		Fingerprint: m.Fingerprint,
		Terms:       m.Matrix.Rows(),
		Features:    m.Vocabulary.Size(),
	}
}

func isRecoverable(err error) bool {
	return errors.Is(err, modelcache.ErrModelNotFound) ||
		errors.Is(err, modelcache.ErrStaleModel) ||
		errors.Is(err, modelcache.ErrCorruptModel)
}
