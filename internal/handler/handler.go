package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gigsafe/internal/codec"
	"gigsafe/internal/domain"
	"gigsafe/internal/repository"
	"gigsafe/internal/safe"
	"gigsafe/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxImportBytes  = 10 << 20
)

// Handler serves the content and gig API
type Handler struct {
	content *service.ContentService
	gigs    *service.GigService
	logger  *zap.Logger
}

// New creates a new Handler
func New(content *service.ContentService, gigs *service.GigService, logger *zap.Logger) *Handler {
	return &Handler{
		content: content,
		gigs:    gigs,
		logger:  logger,
	}
}

// Register registers the API and preview routes with the chi router
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/posts", h.ListPosts)
		r.Get("/posts/{locale}/{slug}", h.GetPost)
		r.Delete("/posts/{locale}/{slug}", h.DeletePost)
		r.Get("/posts/{locale}/{slug}/meta", h.GetPostMeta)

		r.Get("/gigs", h.SearchGigs)
		r.Get("/gigs/{id}", h.GetGig)
		r.Get("/gigs/{id}/meta", h.GetGigMeta)

		r.Post("/import/{format}", h.Import)
		r.Get("/export/{format}", h.Export)
	})

	r.Get("/p/{locale}/{slug}", h.Preview)
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// ListPosts returns a page of published posts
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := h.content.ListPosts(r.Context(), parsePostQuery(r.URL.Query()))
	if err != nil {
		h.serviceError(w, r, "Failed to list posts", err)
		return
	}
	h.writeJSON(w, page, http.StatusOK)
}

// GetPost returns a single post
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.content.GetPost(r.Context(), chi.URLParam(r, "locale"), chi.URLParam(r, "slug"))
	if err != nil {
		h.serviceError(w, r, "Failed to get post", err)
		return
	}
	h.writeJSON(w, post, http.StatusOK)
}

// DeletePost removes a post
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeletePost(r.Context(), chi.URLParam(r, "locale"), chi.URLParam(r, "slug")); err != nil {
		h.serviceError(w, r, "Failed to delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPostMeta returns the page metadata of a post
func (h *Handler) GetPostMeta(w http.ResponseWriter, r *http.Request) {
	m, err := h.content.PageMeta(r.Context(), chi.URLParam(r, "locale"), chi.URLParam(r, "slug"))
	if err != nil {
		h.serviceError(w, r, "Failed to build post metadata", err)
		return
	}
	h.writeJSON(w, m, http.StatusOK)
}

// SearchGigs filters gigs by query parameters
func (h *Handler) SearchGigs(w http.ResponseWriter, r *http.Request) {
	result, filter, err := h.gigs.Search(r.Context(), r.URL.Query())
	if err != nil {
		h.serviceError(w, r, "Failed to search gigs", err)
		return
	}
	h.writeJSON(w, struct {
		Items  []domain.Gig `json:"items"`
		Total  int          `json:"total"`
		Filter any          `json:"filter"`
	}{result.Items, result.Total, filter}, http.StatusOK)
}

// GetGig returns a single gig by ID or slug
func (h *Handler) GetGig(w http.ResponseWriter, r *http.Request) {
	gig, err := h.gigs.GetGig(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, "Failed to get gig", err)
		return
	}
	h.writeJSON(w, gig, http.StatusOK)
}

// GetGigMeta returns the page metadata of a gig
func (h *Handler) GetGigMeta(w http.ResponseWriter, r *http.Request) {
	m, err := h.gigs.GigMeta(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, "Failed to build gig metadata", err)
		return
	}
	h.writeJSON(w, m, http.StatusOK)
}

// Import reads records in the format named by the path
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := h.content.Import(r.Context(), c, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.writeError(w, "Request body too large", err.Error(), http.StatusRequestEntityTooLarge)
		case errors.Is(err, service.ErrInvalidInput):
			h.writeError(w, "Failed to parse "+c.Format(), err.Error(), http.StatusBadRequest)
		default:
			h.serviceError(w, r, "Failed to import "+c.Format(), err)
		}
		return
	}

	h.writeJSON(w, result, http.StatusOK)
}

// Export writes every stored record in the format named by the path
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}

	// buffered so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := h.content.Export(r.Context(), c, &buf); err != nil {
		h.serviceError(w, r, "Failed to export "+c.Format(), err)
		return
	}

	contentType := "application/json"
	if c.Format() == "yaml" {
		contentType = "application/x-yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gigsafe.%s", c.Format()))
	w.Write(buf.Bytes())
}

// Helper methods

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode JSON", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	h.writeJSON(w, ErrorResponse{Error: error, Details: details}, statusCode)
}

// serviceError maps service errors to status codes. Missing records are
// 404; anything else is logged and reported as 500.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		h.writeError(w, "Not found", err.Error(), http.StatusNotFound)
		return
	}
	h.logger.Error(msg,
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	h.writeError(w, msg, err.Error(), http.StatusInternalServerError)
}

// parsePostQuery reads a post listing query. Unknown kinds and malformed
// numbers are ignored.
func parsePostQuery(q url.Values) repository.PostQuery {
	param := func(key string) any {
		if q.Has(key) {
			return q.Get(key)
		}
		return nil
	}

	query := repository.PostQuery{
		Locale:       strings.ToLower(safe.Text(param("locale"))),
		Category:     safe.Text(param("category")),
		FeaturedOnly: safe.Boolean(param("featured")),
		Limit:        clampInt(safe.NumberOr(param("limit"), defaultPageSize), 1, maxPageSize),
		Offset:       clampInt(safe.Number(param("offset")), 0, 1<<31-1),
	}

	switch t := domain.PostType(strings.ToLower(safe.Text(param("kind")))); t {
	case domain.PostTypeGuide, domain.PostTypeReview, domain.PostTypeComparison, domain.PostTypeArticle:
		query.Type = t
	}

	return query
}

func clampInt(f float64, lo, hi int) int {
	switch {
	case math.IsNaN(f) || f < float64(lo):
		return lo
	case f > float64(hi):
		return hi
	default:
		return int(f)
	}
}
