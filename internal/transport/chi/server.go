// Package chi exposes the retrieval pipeline, scanner, and health checks
// over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/componentry/compodex/internal/domain"
	"github.com/componentry/compodex/internal/domain/component"
	"github.com/componentry/compodex/internal/domain/search"
	logpkg "github.com/componentry/compodex/internal/logger"
	"github.com/componentry/compodex/internal/store/sqlite"
	healthuc "github.com/componentry/compodex/internal/usecase/health"
	pipelineuc "github.com/componentry/compodex/internal/usecase/pipeline"
	scanuc "github.com/componentry/compodex/internal/usecase/scan"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// ScanDefaults fills scan request fields the client leaves unset. Values
// come from the scan section of the service configuration.
type ScanDefaults struct {
	IncludeStorybooks bool
	IncludeTests      bool
	Recursive         bool
}

// Server wires the use case services into HTTP handlers.
type Server struct {
	pipeline      *pipelineuc.Service
	scanner       *scanuc.Service
	health        *healthuc.Service
	scanDefaults  ScanDefaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	pipeline *pipelineuc.Service,
	scanner *scanuc.Service,
	health *healthuc.Service,
	scanDefaults ScanDefaults,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:     pipeline,
		scanner:      scanner,
		health:       health,
		scanDefaults: scanDefaults,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrEncoding, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusBadGateway, "embedding_model_unavailable"),
		sentinelHandler(domain.ErrStore, http.StatusInternalServerError, "store_error"),
	}
	return s
}

// Routes mounts all handlers onto the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.searchComponents)
		r.Post("/suggest", s.suggestComponents)

		r.Route("/components", func(r chi.Router) {
			r.Get("/", s.listComponents)
			r.Post("/", s.addComponent)
			r.Get("/by-name/{name}", s.findByName)
			r.Get("/{id}", s.getComponent)
			r.Put("/{id}", s.updateComponent)
			r.Delete("/{id}", s.deleteComponent)
		})

		r.Post("/scan", s.scanFolder)
		r.Post("/scan/rescan", s.rescanFile)
	})

	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

type searchRequest struct {
	Query   string            `json:"query"`
	Limit   int               `json:"limit"`
	Filters map[string]string `json:"filters"`
}

type suggestRequest struct {
	Description string `json:"description"`
	Limit       int    `json:"limit"`
}

type searchResponse struct {
	Results []resultItem `json:"results"`
	Total   int          `json:"total"`
	Query   string       `json:"query"`
}

type resultItem struct {
	ID            string             `json:"id"`
	Score         float64            `json:"score"`
	Document      string             `json:"document"`
	Metadata      component.Metadata `json:"metadata"`
	MatchedFields []string           `json:"matched_fields"`
}

type componentResponse struct {
	ID       string             `json:"id"`
	Document string             `json:"document"`
	Metadata component.Metadata `json:"metadata"`
}

type listResponse struct {
	Components []componentResponse `json:"components"`
	Total      int                 `json:"total"`
}

type scanRequest struct {
	Folder            string `json:"folder_path"`
	IncludeStorybooks *bool  `json:"include_storybooks"`
	IncludeTests      *bool  `json:"include_tests"`
	Recursive         *bool  `json:"recursive"`
}

type rescanRequest struct {
	FilePath string `json:"file_path"`
}

// writeResults renders search results in the standard response shape.
// matchedFields is a fixed per-endpoint hint, not a per-result analysis.
func (s *Server) writeResults(w http.ResponseWriter, query string, results []search.Result, matchedFields []string) {
	items := make([]resultItem, len(results))
	for i, res := range results {
		items[i] = resultItem{
			ID:            res.ID,
			Score:         res.Score,
			Document:      res.Document,
			Metadata:      res.Metadata,
			MatchedFields: matchedFields,
		}
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: items, Total: len(items), Query: query})
}

func (s *Server) searchComponents(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	results, err := s.pipeline.SearchComponents(r.Context(), req.Query, req.Limit, req.Filters)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeResults(w, req.Query, results, []string{"name", "description"})
}

func (s *Server) suggestComponents(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	results, err := s.pipeline.SuggestForUI(r.Context(), req.Description, req.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeResults(w, req.Description, results, []string{"description"})
}

func (s *Server) findByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	results, err := s.pipeline.FindByName(r.Context(), name, 0)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.writeResults(w, name, results, []string{"name"})
}

func (s *Server) addComponent(w http.ResponseWriter, r *http.Request) {
	var c component.Component
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	if err := s.pipeline.AddComponent(r.Context(), &c); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateComponent(w http.ResponseWriter, r *http.Request) {
	var c component.Component
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	c.ID = chi.URLParam(r, "id")

	if err := s.pipeline.UpdateComponent(r.Context(), &c); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.DeleteComponent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getComponent(w http.ResponseWriter, r *http.Request) {
	tuple, err := s.pipeline.GetComponent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tupleToResponse(tuple))
}

func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	tuples, err := s.pipeline.GetAllComponents(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]componentResponse, len(tuples))
	for i, t := range tuples {
		items[i] = tupleToResponse(t)
	}
	writeJSON(w, http.StatusOK, listResponse{Components: items, Total: len(items)})
}

func (s *Server) scanFolder(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	scanReq := scanuc.Request{
		Folder:            req.Folder,
		IncludeStorybooks: derefBool(req.IncludeStorybooks, s.scanDefaults.IncludeStorybooks),
		IncludeTests:      derefBool(req.IncludeTests, s.scanDefaults.IncludeTests),
		Recursive:         derefBool(req.Recursive, s.scanDefaults.Recursive),
	}

	report, err := s.scanner.Scan(r.Context(), scanReq)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) rescanFile(w http.ResponseWriter, r *http.Request) {
	var req rescanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	c, err := s.scanner.Rescan(r.Context(), req.FilePath)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func tupleToResponse(t sqlite.Tuple) componentResponse {
	return componentResponse{
		ID:       t.ID,
		Document: t.Document,
		Metadata: t.Metadata,
	}
}

func derefBool(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrValidation,
		domain.ErrEncoding,
		domain.ErrModelUnavailable,
		domain.ErrStore,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
