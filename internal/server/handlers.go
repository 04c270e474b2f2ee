package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/kotoba/internal/analysis"
	"github.com/hyperjump/kotoba/internal/glossary"
	"github.com/hyperjump/kotoba/internal/models"
	"github.com/hyperjump/kotoba/internal/search"
	"github.com/hyperjump/kotoba/internal/storage"
	"github.com/hyperjump/kotoba/internal/translate"
	"github.com/hyperjump/kotoba/internal/vector"
)

// maxBodyBytes bounds request bodies; bulk term uploads are the largest.
const maxBodyBytes = 32 << 20

const maxSuggestions = 5

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var query models.RetrieveQuery
	if !s.decode(w, r, &query) {
		return
	}
	if err := query.Validate(s.config.Retrieval.DefaultK, s.config.Retrieval.MaxK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("retrieve request", zap.String("query", query.Query), zap.Int("k", query.K))

	matches, err := s.engine.Retrieve(r.Context(), query.Query, query.K)
	if err != nil {
		s.respondFailure(w, "retrieve failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.RetrieveResponse{
		Query:      query.Query,
		Normalized: analysis.Normalize(query.Query),
		Matches:    matches,
		QueryTime:  time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if s.translator == nil {
		s.respondError(w, http.StatusServiceUnavailable, "translation not configured")
		return
	}
	start := time.Now()
	var req models.TranslateRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.K == 0 {
		req.K = s.config.Translate.TopK
	}
	if err := req.Validate(s.config.Retrieval.DefaultK, s.config.Retrieval.MaxK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.translator.Translate(r.Context(), req.Text, req.K)
	if err != nil {
		s.respondFailure(w, "translate failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, &models.TranslateResponse{
		Text:        req.Text,
		Translation: res.Translation,
		Terms:       res.Terms,
		QueryTime:   time.Since(start).Milliseconds(),
	})
}

type addTermsRequest struct {
	Terms []models.Term `json:"terms"`
	// Rebuild defaults to true.
	Rebuild *bool `json:"rebuild,omitempty"`
}

type addTermsResponse struct {
	*glossary.Result
	Rejected int           `json:"rejected"`
	Model    *search.Status `json:"model,omitempty"`
}

func (s *Server) handleAddTerms(w http.ResponseWriter, r *http.Request) {
	var req addTermsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Terms) == 0 {
		s.respondError(w, http.StatusBadRequest, "terms are required")
		return
	}
	terms, rejected := glossary.Clean(req.Terms)
	res, err := s.importer.ImportTerms(r.Context(), "api", terms)
	if err != nil {
		s.respondFailure(w, "add terms failed", err)
		return
	}
	resp := addTermsResponse{Result: res, Rejected: rejected}
	if res.Inserted > 0 && (req.Rebuild == nil || *req.Rebuild) {
		m, err := s.engine.Rebuild(r.Context())
		if m == nil {
			s.respondFailure(w, "rebuild after insert failed", err)
			return
		}
		if err != nil {
			// The new model is active; only persisting it failed.
			s.logger.Warn("rebuild after insert not saved", zap.Error(err))
		}
		st := s.engine.Status()
		resp.Model = &st
	}
	s.respondJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTerm(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	term, err := s.storage.GetTerm(r.Context(), word)
	if err != nil {
		if errors.Is(err, storage.ErrTermNotFound) {
			s.respondJSON(w, http.StatusNotFound, map[string]interface{}{
				"error":       "term not found",
				"suggestions": s.engine.Suggest(word, maxSuggestions),
			})
			return
		}
		s.respondFailure(w, "get term failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, term)
}

func (s *Server) handleRebuild(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("Model rebuild requested")
	if _, err := s.engine.Rebuild(r.Context()); err != nil {
		s.respondFailure(w, "rebuild failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	count, err := s.storage.CountTerms(r.Context())
	if err != nil {
		s.respondFailure(w, "status: count terms failed", err)
		return
	}
	resp := map[string]interface{}{
		"terms": count,
		"model": s.engine.Status(),
		"config": map[string]interface{}{
			"database_path":       s.config.Storage.DatabasePath,
			"model_dir":           s.config.Storage.ModelDir,
			"default_k":           s.config.Retrieval.DefaultK,
			"max_k":               s.config.Retrieval.MaxK,
			"watch_enabled":       s.config.Watch.EnabledOrDefault(),
			"translation_enabled": s.translator != nil,
			"translation_model":   s.config.Translate.Model,
		},
	}
	paths := append(storage.DatabaseFiles(s.config.Storage.DatabasePath), s.config.Storage.ModelDir)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp["disk_usage_bytes"] = diskBytes
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// statusFor maps an operation error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, search.ErrNotInitialized), errors.Is(err, translate.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, vector.ErrEmptyCorpus):
		return http.StatusConflict
	case errors.Is(err, translate.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondFailure(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
