package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/amishk599/jobmatch/internal/model"
)

// maxBodyBytes caps a search request body.
const maxBodyBytes = 1 << 20

// Searcher runs one search request end to end.
type Searcher interface {
	Search(ctx context.Context, q model.SearchQuery) []model.JobListing
}

type Handler struct {
	searcher Searcher
	logger   *slog.Logger
}

func NewHandler(searcher Searcher, logger *slog.Logger) *Handler {
	return &Handler{
		searcher: searcher,
		logger:   logger,
	}
}

func (h *Handler) Attach(r chi.Router) {
	r.Post("/search_jobs", h.handleSearch)
	r.Post("/search_jobs/", h.handleSearch)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var q model.SearchQuery

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: body exceeds %d bytes", model.ErrInvalidQuery, tooLarge.Limit))
			return
		}
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("%w: %w", model.ErrInvalidQuery, err))
		return
	}

	if err := q.Validate(); err != nil {
		h.logger.Debug("rejected search request", "error", err)
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	jobs := h.searcher.Search(r.Context(), q)
	if jobs == nil {
		jobs = []model.JobListing{}
	}

	writeJson(w, jobs)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	text := http.StatusText(code)

	if err != nil {
		text = err.Error()
	}

	json.NewEncoder(w).Encode(errorResponse{Error: text})
}
