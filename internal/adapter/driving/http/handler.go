package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/application"
	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// Collector triggers collection runs. *application.Scheduler satisfies it.
type Collector interface {
	Run(ctx context.Context) (model.RunSummary, error)
	Running() bool
}

var _ Collector = (*application.Scheduler)(nil)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	collector Collector
	runStore  driven.RunStore
	logger    *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. runStore may
// be nil, in which case the run history endpoint reports an empty list.
func NewHandler(collector Collector, runStore driven.RunStore, logger *slog.Logger) *Handler {
	return &Handler{
		collector: collector,
		runStore:  runStore,
		logger:    logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/collect/youtube", h.CollectYouTube)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// accessLog runs outermost so the request id is set before a panic is logged.
	return accessLog(logger, recoverPanics(logger, mux))
}

// CollectYouTube runs a collection synchronously and returns its summary.
// A trigger while another run is in flight gets 409.
func (h *Handler) CollectYouTube(w http.ResponseWriter, r *http.Request) {
	// The run finishes even if the client goes away.
	summary, err := h.collector.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		if errors.Is(err, application.ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, application.ErrMissingCredential) {
			status = http.StatusBadRequest
		}
		h.logger.Error("collection run failed", "run_id", summary.RunID, "error", err)
		writeJSON(w, status, toRunResponse(summary))
		return
	}

	writeJSON(w, http.StatusOK, toRunResponse(summary))
}

// ListRuns returns the most recent runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit: expected a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	resp := []RunResponse{}
	if h.runStore == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	runs, err := h.runStore.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Running: h.collector.Running(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}
