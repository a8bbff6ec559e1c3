// Command collect performs a single YouTube collection run and exits.
// The exit status is 1 when the run ends in error.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	ndjsonadapter "github.com/ericfisherdev/mentionpipe/internal/adapter/driven/ndjson"
	sqliteadapter "github.com/ericfisherdev/mentionpipe/internal/adapter/driven/sqlite"
	youtubeadapter "github.com/ericfisherdev/mentionpipe/internal/adapter/driven/youtube"
	"github.com/ericfisherdev/mentionpipe/internal/application"
	"github.com/ericfisherdev/mentionpipe/internal/config"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
	"github.com/ericfisherdev/mentionpipe/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("collection failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	slog.SetDefault(logging.NewCLILogger(slog.LevelInfo))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(logging.NewCLILogger(logging.ParseLevel(cfg.LogLevel)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Run history is optional for one-shot runs; an empty DB path skips it.
	var runStore driven.RunStore
	if cfg.DBPath != "" {
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}
		runStore = sqliteadapter.NewRunRepo(db)
	}

	var ytClient driven.YouTubeClient
	if cfg.HasYouTubeCredentials() {
		c, err := youtubeadapter.NewClient(ctx, cfg.YouTubeAPIKey, youtubeadapter.Options{
			Retry: youtubeadapter.RetryPolicy{
				MaxRetries: cfg.MaxRetries,
				Backoff:    cfg.RetryBackoff,
			},
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return err
		}
		ytClient = c
	}

	svc := application.NewCollectService(
		ytClient,
		ndjsonadapter.NewFileSink(cfg.DataDir),
		runStore,
		application.RunConfig{
			SearchTerms:         cfg.SearchTerms,
			PublishedAfter:      cfg.PublishedAfter,
			MaxVideos:           cfg.MaxVideos,
			MaxCommentsPerVideo: cfg.MaxCommentsPerVideo,
			ShowID:              cfg.ShowID,
			Lang:                cfg.Lang,
		},
	)

	summary, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	slog.Info("youtube collection done",
		"videos_scanned", summary.Counts.VideosScanned,
		"comments_written", summary.Counts.RecordsWritten,
		"path", summary.OutputPath,
	)
	return nil
}
