package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Save records a finished run. Saving the same run ID twice replaces the row.
func (r *RunRepo) Save(ctx context.Context, s model.RunSummary) error {
	const query = `
		INSERT INTO collection_runs (
			run_id, status, videos_scanned, records_written, output_path, message, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			status = excluded.status,
			videos_scanned = excluded.videos_scanned,
			records_written = excluded.records_written,
			output_path = excluded.output_path,
			message = excluded.message,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`

	_, err := r.db.Writer.ExecContext(ctx, query,
		s.RunID, string(s.Status), s.Counts.VideosScanned, s.Counts.RecordsWritten,
		s.OutputPath, s.Message, formatTime(s.StartedAt), formatTime(s.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", s.RunID, err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]model.RunSummary, error) {
	const query = `
		SELECT run_id, status, videos_scanned, records_written, output_path, message, started_at, finished_at
		FROM collection_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []model.RunSummary{}
	for rows.Next() {
		var s model.RunSummary
		var status, startedAt, finishedAt string
		if err := rows.Scan(&s.RunID, &status, &s.Counts.VideosScanned, &s.Counts.RecordsWritten,
			&s.OutputPath, &s.Message, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Status = model.RunStatus(status)

		if s.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at for run %s: %w", s.RunID, err)
		}
		if s.FinishedAt, err = parseTime(finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at for run %s: %w", s.RunID, err)
		}
		runs = append(runs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// storedTimeLayout is fixed-width so lexical order in SQL matches time order.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// parseTime tries the formats SQLite and formatTime produce.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04:05.000",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
