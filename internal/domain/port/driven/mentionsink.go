package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
)

// MentionSink defines the driven port for the per-run output dataset.
type MentionSink interface {
	// Open creates (or truncates) the dataset for the given run date and returns
	// a writer positioned at its start.
	Open(ctx context.Context, runDate time.Time) (MentionWriter, error)
}

// MentionWriter appends mentions to an open dataset. Each Write is visible to
// readers of the dataset on return; Close flushes it to stable storage.
type MentionWriter interface {
	Write(m model.NormalizedMention) error
	// Location returns where the dataset lives (a file path for file sinks).
	Location() string
	Close() error
}
