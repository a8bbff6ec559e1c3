// Package ndjson implements the MentionSink port as newline-delimited JSON files.
package ndjson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.MentionSink   = (*FileSink)(nil)
	_ driven.MentionWriter = (*FileWriter)(nil)
)

// FileName is the dataset file written inside each run-date directory.
const FileName = "youtube.ndjson"

// FileSink writes each run to <dataDir>/raw/<YYYY-MM-DD>/youtube.ndjson.
// A second run on the same date truncates the earlier file.
type FileSink struct {
	dataDir string
}

// NewFileSink creates a FileSink rooted at dataDir.
func NewFileSink(dataDir string) *FileSink {
	return &FileSink{dataDir: dataDir}
}

// PathFor returns the dataset path for the given run date.
func (s *FileSink) PathFor(runDate time.Time) string {
	return filepath.Join(s.dataDir, "raw", runDate.Format(time.DateOnly), FileName)
}

// Open creates the run-date directory and truncates or creates the dataset file.
func (s *FileSink) Open(ctx context.Context, runDate time.Time) (driven.MentionWriter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := s.PathFor(runDate)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create dataset dir for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create dataset %s: %w", path, err)
	}

	return &FileWriter{f: f, enc: json.NewEncoder(f), path: path}, nil
}

// FileWriter appends one JSON object per line. Writes go straight to the file
// without buffering.
type FileWriter struct {
	f    *os.File
	enc  *json.Encoder
	path string
}

// Write encodes m as a single line.
func (w *FileWriter) Write(m model.NormalizedMention) error {
	if err := w.enc.Encode(m); err != nil {
		return fmt.Errorf("write mention %s to %s: %w", m.ExternalID, w.path, err)
	}
	return nil
}

// Location returns the dataset file path.
func (w *FileWriter) Location() string {
	return w.path
}

// Close syncs and closes the dataset file.
func (w *FileWriter) Close() error {
	if err := w.f.Sync(); err != nil {
		_ = w.f.Close()
		return fmt.Errorf("sync dataset %s: %w", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("close dataset %s: %w", w.path, err)
	}
	return nil
}
