package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RunResponse is the JSON representation of a collection run summary.
type RunResponse struct {
	RunID      string         `json:"run_id"`
	Status     string         `json:"status"`
	Counts     CountsResponse `json:"counts"`
	Path       string         `json:"path,omitempty"`
	Message    string         `json:"message,omitempty"`
	StartedAt  string         `json:"started_at"`
	FinishedAt string         `json:"finished_at"`
	DurationMS int64          `json:"duration_ms"`
}

// CountsResponse carries the per-run totals.
type CountsResponse struct {
	VideosScanned  int `json:"videos_scanned"`
	RecordsWritten int `json:"records_written"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Running bool   `json:"running"`
	Time    string `json:"time"`
}

// toRunResponse converts a domain RunSummary to its JSON response representation.
func toRunResponse(s model.RunSummary) RunResponse {
	return RunResponse{
		RunID:  s.RunID,
		Status: string(s.Status),
		Counts: CountsResponse{
			VideosScanned:  s.Counts.VideosScanned,
			RecordsWritten: s.Counts.RecordsWritten,
		},
		Path:       s.OutputPath,
		Message:    s.Message,
		StartedAt:  formatTime(s.StartedAt),
		FinishedAt: formatTime(s.FinishedAt),
		DurationMS: s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
