package model

import "time"

// RunStatus is the terminal state of a collection run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusError   RunStatus = "error"
)

// RunCounts reports how much a run collected.
type RunCounts struct {
	VideosScanned  int `json:"videos_scanned"`
	RecordsWritten int `json:"records_written"`
}

// RunSummary is the result of one collection run. Counts are always populated,
// even when the run ends in error.
type RunSummary struct {
	RunID      string    `json:"run_id"`
	Status     RunStatus `json:"status"`
	Counts     RunCounts `json:"counts"`
	OutputPath string    `json:"path,omitempty"`
	Message    string    `json:"message,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
