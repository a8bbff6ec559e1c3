package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	ndjsonadapter "github.com/ericfisherdev/mentionpipe/internal/adapter/driven/ndjson"
	sqliteadapter "github.com/ericfisherdev/mentionpipe/internal/adapter/driven/sqlite"
	youtubeadapter "github.com/ericfisherdev/mentionpipe/internal/adapter/driven/youtube"
	httphandler "github.com/ericfisherdev/mentionpipe/internal/adapter/driving/http"
	"github.com/ericfisherdev/mentionpipe/internal/application"
	"github.com/ericfisherdev/mentionpipe/internal/config"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
	"github.com/ericfisherdev/mentionpipe/internal/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid values).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logging.ParseLevel(cfg.LogLevel),
	})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"data_dir", cfg.DataDir,
		"search_terms", cfg.SearchTerms,
		"show_id", cfg.ShowID,
		"youtube_credentials", cfg.HasYouTubeCredentials(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open run history database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	version, dirty, err := sqliteadapter.SchemaVersion(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "schema_version", version, "dirty", dirty)

	runStore := sqliteadapter.NewRunRepo(db)

	// 4. Create YouTube client (nil if no API key; runs then fail fast).
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
		slog.Info("youtube client created")
	} else {
		slog.Warn("no youtube api key configured, collection runs will fail until MENTIONPIPE_YOUTUBE_API_KEY is set")
	}

	// 5. Wire the collection service.
	collectSvc := application.NewCollectService(
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

	// 6. Scheduler serializes HTTP-triggered and periodic runs.
	scheduler := application.NewScheduler(collectSvc, cfg.CollectInterval)
	go scheduler.Start(ctx)

	// 7. HTTP API.
	apiHandler := httphandler.NewHandler(scheduler, runStore, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(apiHandler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// A collection run is served synchronously and can take minutes.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("mentionpipe started",
		"listen_addr", cfg.ListenAddr,
		"collect_interval", cfg.CollectInterval,
	)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
