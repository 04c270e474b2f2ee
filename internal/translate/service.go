package translate

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/metrics"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/pkg/utils"
)

// Retriever returns the k glossary terms most similar to a passage.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.Match, error)
}

// Completer generates a reply for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result is a translation with the glossary terms that were offered to the model.
type Result struct {
	Translation string
	Terms       []models.Match
}

// Service ties retrieval and completion together.
type Service struct {
	retriever      Retriever
	completer      Completer
	targetLanguage string
	previewLen     int
	logger         *zap.Logger
	metrics        *metrics.Metrics
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) ServiceOption {
	return func(s *Service) { s.logger = utils.OrNop(l) }
}

// WithMetrics records translation outcomes.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithTargetLanguage sets the language translated into.
func WithTargetLanguage(lang string) ServiceOption {
	return func(s *Service) {
		if lang != "" {
			s.targetLanguage = lang
		}
	}
}

// WithDefinitionPreview sets how many runes of each definition enter the prompt.
func WithDefinitionPreview(n int) ServiceOption {
	return func(s *Service) { s.previewLen = n }
}

// NewService creates a translation service.
func NewService(r Retriever, c Completer, opts ...ServiceOption) *Service {
	s := &Service{
		retriever:      r,
		completer:      c,
		targetLanguage: "Chinese",
		previewLen:     100,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Translate retrieves up to k related terms for text and asks the model for a
// translation. Terms that share no n-gram with text (score 0) are left out of
// the prompt.
func (s *Service) Translate(ctx context.Context, text string, k int) (*Result, error) {
	matches, err := s.retriever.Retrieve(ctx, text, k)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve terms: %w", err)
	}
	related := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score > 0 {
			related = append(related, m)
		}
	}

	prompt := BuildPrompt(text, s.targetLanguage, related, s.previewLen)
	s.logger.Debug("Translation prompt built", zap.Int("terms", len(related)), zap.Int("prompt_len", len(prompt)))

	translation, err := s.completer.Complete(ctx, prompt)
	s.metrics.ObserveTranslation(err)
	if err != nil {
		return nil, fmt.Errorf("failed to translate: %w", err)
	}
	return &Result{Translation: translation, Terms: related}, nil
}
