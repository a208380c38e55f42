package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"gigsafe/internal/metrics"
)

// RouterConfig holds the pieces the router mounts besides the API
type RouterConfig struct {
	CORSOrigins []string
	Events      http.Handler
	Metrics     http.Handler
	Recorder    *metrics.Metrics
	Logger      *zap.Logger
}

// NewRouter builds the complete HTTP handler
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(CORS(cfg.CORSOrigins))
	if cfg.Recorder != nil {
		r.Use(Instrument(cfg.Recorder))
	}

	h.Register(r)

	if cfg.Events != nil {
		r.Method(http.MethodGet, "/events", cfg.Events)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Not found", r.URL.Path, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Method not allowed", r.Method, http.StatusMethodNotAllowed)
	})

	return r
}
