package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
)

// ErrMissingCredential is returned by Run when no YouTube client was configured
// because the API key is absent. No network call is made and no dataset is written.
var ErrMissingCredential = errors.New("youtube api key not configured: set MENTIONPIPE_YOUTUBE_API_KEY")

// RunConfig holds the parameters of a collection run. It is passed in
// explicitly so the service never reads process-wide state.
type RunConfig struct {
	SearchTerms         []string
	PublishedAfter      time.Time
	MaxVideos           int
	MaxCommentsPerVideo int
	ShowID              string
	Lang                string
}

// CollectService orchestrates one collection run: search videos, fetch each
// video's comments, map them to mentions, and stream them to the dataset.
type CollectService struct {
	client driven.YouTubeClient
	sink   driven.MentionSink
	runs   driven.RunStore
	cfg    RunConfig
}

// NewCollectService creates a CollectService. client may be nil when no API key
// is configured; Run then fails fast with ErrMissingCredential. runs may be nil
// to skip run history.
func NewCollectService(client driven.YouTubeClient, sink driven.MentionSink, runs driven.RunStore, cfg RunConfig) *CollectService {
	return &CollectService{
		client: client,
		sink:   sink,
		runs:   runs,
		cfg:    cfg,
	}
}

// Run executes a single collection run and returns its summary. Upstream API
// failures only shrink the counts; the returned error is non-nil only for a
// missing credential or a dataset I/O failure, and the summary status is then
// model.RunStatusError.
func (s *CollectService) Run(ctx context.Context) (model.RunSummary, error) {
	summary := model.RunSummary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	if s.client == nil {
		return s.finish(ctx, summary, ErrMissingCredential)
	}

	slog.Info("collection run started",
		"run_id", summary.RunID,
		"terms", s.cfg.SearchTerms,
		"published_after", s.cfg.PublishedAfter,
		"max_videos", s.cfg.MaxVideos,
		"max_comments_per_video", s.cfg.MaxCommentsPerVideo,
	)

	videos := s.client.SearchItems(ctx, s.cfg.SearchTerms, s.cfg.PublishedAfter, s.cfg.MaxVideos)

	w, err := s.sink.Open(ctx, summary.StartedAt)
	if err != nil {
		return s.finish(ctx, summary, fmt.Errorf("opening dataset: %w", err))
	}
	summary.OutputPath = w.Location()

	err = s.collect(ctx, w, videos, &summary.Counts)
	if closeErr := w.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing dataset: %w", closeErr)
	}

	return s.finish(ctx, summary, err)
}

// collect fetches and writes comments video by video, in search order.
// counts is updated as it goes so a failure still reports partial totals.
func (s *CollectService) collect(ctx context.Context, w driven.MentionWriter, videos []model.VideoRef, counts *model.RunCounts) error {
	opts := MappingOptions{ShowID: s.cfg.ShowID, Lang: s.cfg.Lang}

	for _, video := range videos {
		comments := s.client.FetchThread(ctx, video.ID, s.cfg.MaxCommentsPerVideo)
		counts.VideosScanned++

		for _, comment := range comments {
			if err := w.Write(MapMention(video, comment, opts)); err != nil {
				return fmt.Errorf("writing mention for video %s: %w", video.ID, err)
			}
			counts.RecordsWritten++
		}

		slog.Debug("video collected", "video_id", video.ID, "comments", len(comments))
	}

	return nil
}

// finish stamps the terminal status, records the run, and logs the outcome.
func (s *CollectService) finish(ctx context.Context, summary model.RunSummary, runErr error) (model.RunSummary, error) {
	summary.FinishedAt = time.Now().UTC()

	if runErr != nil {
		summary.Status = model.RunStatusError
		summary.Message = runErr.Error()
		slog.Error("collection run failed",
			"run_id", summary.RunID,
			"videos_scanned", summary.Counts.VideosScanned,
			"records_written", summary.Counts.RecordsWritten,
			"error", runErr,
		)
	} else {
		summary.Status = model.RunStatusSuccess
		slog.Info("collection run complete",
			"run_id", summary.RunID,
			"videos_scanned", summary.Counts.VideosScanned,
			"records_written", summary.Counts.RecordsWritten,
			"path", summary.OutputPath,
			"duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond),
		)
	}

	if s.runs != nil {
		// Recorded even if ctx was canceled mid-run.
		if err := s.runs.Save(context.WithoutCancel(ctx), summary); err != nil {
			slog.Error("failed to record run", "run_id", summary.RunID, "error", err)
		}
	}

	return summary, runErr
}
