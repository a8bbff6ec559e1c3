package driven

import (
	"context"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
)

// RunStore defines the driven port for the run history. Runs never read it;
// it exists for operators and the HTTP API.
type RunStore interface {
	Save(ctx context.Context, summary model.RunSummary) error
	ListRecent(ctx context.Context, limit int) ([]model.RunSummary, error)
}
