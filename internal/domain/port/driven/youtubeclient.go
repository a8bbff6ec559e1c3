package driven

import (
	"context"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
)

// YouTubeClient defines the driven port for paginated collection from the
// YouTube Data API. Both methods follow a partial-success contract: failures
// end pagination and whatever was accumulated is returned. They never return
// an error to the caller.
type YouTubeClient interface {
	// SearchItems returns up to maxItems videos matching terms published after
	// publishedAfter, in provider order (most recent first).
	SearchItems(ctx context.Context, terms []string, publishedAfter time.Time, maxItems int) []model.VideoRef

	// FetchThread returns up to maxItems comments for a video, each top-level
	// comment followed by its replies. Returns an empty slice when comments are
	// disabled for the video.
	FetchThread(ctx context.Context, videoID string, maxItems int) []model.RawComment
}
