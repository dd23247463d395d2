// Package port contains the HTTP entry point into the converter.
// Handlers translate query parameters into app layer calls and map results
// and errors back to JSON, server-sent events or the HTML page.
package port

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apiv1 "github.com/aelexs/timeconverter/api/v1"
	"github.com/aelexs/timeconverter/internal/converter/app"
	"github.com/aelexs/timeconverter/internal/domain"
	"github.com/aelexs/timeconverter/internal/errmap"
	"github.com/aelexs/timeconverter/pkg/timeconv"
)

// converter is a narrow, consumer-defined interface for the app operations
// the handler requires. The *app.Service satisfies this.
type converter interface {
	Current(ctx context.Context, offsetHours int) app.CurrentView
	ConvertDateTime(ctx context.Context, text string) (app.DateTimeView, error)
	ConvertFileTime(ctx context.Context, text string) (app.FileTimeView, error)
	ConvertUnix(ctx context.Context, text string) (app.UnixView, error)
	InitialState(ctx context.Context, offsetHours int) app.State
	Apply(ctx context.Context, st app.State, e app.Edit) (app.State, error)
	Refresh(ctx context.Context, interval time.Duration, offset func() int, sink func(app.CurrentView) error) error
}

// HandlerConfig holds the dependencies for Handler.
type HandlerConfig struct {
	// Service is usually an *app.Service.
	Service converter

	// DefaultOffsetHours is used when a request has no offset parameter.
	DefaultOffsetHours int

	// RefreshInterval is the tick of event streams. Zero means
	// domain.RefreshInterval.
	RefreshInterval time.Duration

	// StreamContext ends open event streams when it is done, so that server
	// shutdown is not held up by long-lived connections. Nil means streams
	// end only with their request.
	StreamContext context.Context

	Logger *slog.Logger
}

// Handler serves the converter's HTTP API and page.
type Handler struct {
	svc       converter
	offset    int
	interval  time.Duration
	streamCtx context.Context
	logger    *slog.Logger
}

// NewHandler creates a Handler backed by cfg.Service.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		svc:       cfg.Service,
		offset:    cfg.DefaultOffsetHours,
		interval:  cfg.RefreshInterval,
		streamCtx: cfg.StreamContext,
		logger:    cfg.Logger,
	}
	if h.interval <= 0 {
		h.interval = domain.RefreshInterval
	}
	if h.streamCtx == nil {
		h.streamCtx = context.Background()
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Register mounts the converter routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.page)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/current", h.current)
		r.Get("/current/stream", h.stream)
		r.Get("/convert/datetime", h.convertDateTime)
		r.Get("/convert/filetime", h.convertFileTime)
		r.Get("/convert/unix", h.convertUnix)
		r.Get("/openapi.json", h.openAPI)
	})
}

// NewRouter returns a chi router with only the converter routes registered.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	offset, err := h.offsetParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Current(r.Context(), offset))
}

func (h *Handler) convertDateTime(w http.ResponseWriter, r *http.Request) {
	value, err := valueParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.svc.ConvertDateTime(r.Context(), value)
	h.writeView(w, r, view, err)
}

func (h *Handler) convertFileTime(w http.ResponseWriter, r *http.Request) {
	value, err := valueParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.svc.ConvertFileTime(r.Context(), value)
	h.writeView(w, r, view, err)
}

func (h *Handler) convertUnix(w http.ResponseWriter, r *http.Request) {
	value, err := valueParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	view, err := h.svc.ConvertUnix(r.Context(), value)
	h.writeView(w, r, view, err)
}

func (h *Handler) openAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(apiv1.Spec)
}

// writeView writes a conversion result. An Invalid Date result is still a
// successful response: the view carries valid=false and the marker fields.
func (h *Handler) writeView(w http.ResponseWriter, r *http.Request, view any, err error) {
	if err != nil && !errors.Is(err, timeconv.ErrInvalidDate) {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// offsetParam reads the offset query parameter. Absent or empty means the
// configured default.
func (h *Handler) offsetParam(r *http.Request) (int, error) {
	text := r.URL.Query().Get("offset")
	if strings.TrimSpace(text) == "" {
		return h.offset, nil
	}
	return app.ParseOffsetHours(text)
}

func valueParam(r *http.Request) (string, error) {
	q := r.URL.Query()
	if !q.Has("value") {
		return "", domain.ErrMissingInput
	}
	return q.Get("value"), nil
}

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	he := errmap.ToHTTPError(err)
	switch {
	case domain.IsClientError(err):
		h.logger.DebugContext(r.Context(), "request rejected",
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	case domain.IsRetryable(err):
		w.Header().Set("Retry-After", "1")
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
	writeJSON(w, he.StatusCode, errorResponse{
		Code:      he.Code,
		Message:   he.Message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
