package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/catalog-sync/internal/delivery/http/request"
	"github.com/user/catalog-sync/internal/delivery/http/response"
	"github.com/user/catalog-sync/internal/usecase"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	crawler    usecase.CrawlOrchestrator
	importer   usecase.PageImporter
	reconciler usecase.Reconciler
	cursor     usecase.CursorTracker
	checks     map[string]Pinger
	logger     *zap.Logger
}

func NewHandler(
	crawler usecase.CrawlOrchestrator,
	importer usecase.PageImporter,
	reconciler usecase.Reconciler,
	cursor usecase.CursorTracker,
	checks map[string]Pinger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		crawler:    crawler,
		importer:   importer,
		reconciler: reconciler,
		cursor:     cursor,
		checks:     checks,
		logger:     logger,
	}
}

func (h *Handler) HandleCrawlNext(w http.ResponseWriter, r *http.Request) {
	var req request.CrawlNextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.crawler.CrawlNext(r.Context(), usecase.CrawlRequest{
		CategoryURL:  req.CategoryURL,
		PerPageLimit: req.PerPageLimit,
		PageCount:    req.PageCount,
	})
	if err != nil {
		h.writeUsecaseError(w, "crawl next", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleImportPage(w http.ResponseWriter, r *http.Request) {
	var req request.ImportPageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.importer.ImportPage(r.Context(), usecase.ImportRequest{
		SessionID:  req.SessionID,
		PageNumber: req.PageNumber,
	})
	if err != nil {
		h.writeUsecaseError(w, "import page", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleReconcile(w http.ResponseWriter, r *http.Request) {
	var req request.ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.reconciler.Reconcile(r.Context(), usecase.ReconcileRequest{
		EntryIDs:  req.EntryIDs,
		AutoApply: req.AutoApply,
	})
	if err != nil {
		h.writeUsecaseError(w, "reconcile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	categoryURL := r.URL.Query().Get("category_url")
	if categoryURL == "" {
		h.writeJSONError(w, "category_url query parameter is required", http.StatusBadRequest)
		return
	}

	sessions, err := h.cursor.List(r.Context(), categoryURL)
	if err != nil {
		h.writeUsecaseError(w, "list sessions", err)
		return
	}
	next, err := h.cursor.NextPage(r.Context(), categoryURL)
	if err != nil {
		h.writeUsecaseError(w, "next page", err)
		return
	}

	h.writeJSON(w, http.StatusOK, response.SessionsResponse{
		CategoryURL: categoryURL,
		NextPage:    next,
		Sessions:    sessions,
	})
}

func (h *Handler) HandleResetSessions(w http.ResponseWriter, r *http.Request) {
	categoryURL := r.URL.Query().Get("category_url")
	if categoryURL == "" {
		h.writeJSONError(w, "category_url query parameter is required", http.StatusBadRequest)
		return
	}

	deleted, err := h.cursor.Reset(r.Context(), categoryURL)
	if err != nil {
		h.writeUsecaseError(w, "reset sessions", err)
		return
	}
	h.writeJSON(w, http.StatusOK, response.ResetResponse{CategoryURL: categoryURL, Deleted: deleted})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := response.HealthResponse{Status: "ok", Dependencies: make(map[string]string, len(h.checks))}
	for name, dep := range h.checks {
		if err := dep.Ping(ctx); err != nil {
			h.logger.Error("health check failed", zap.String("dependency", name), zap.Error(err))
			resp.Dependencies[name] = "unhealthy"
			resp.Status = "degraded"
			continue
		}
		resp.Dependencies[name] = "healthy"
	}

	if resp.Status != "ok" {
		h.writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// writeUsecaseError maps use case sentinels to client error codes; anything
// else is logged and hidden behind a 500.
func (h *Handler) writeUsecaseError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrSessionNotFound):
		h.writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
