package application

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
)

// ErrRunInProgress is returned when a run is requested while another is still
// writing. Two runs on the same day would truncate each other's dataset.
var ErrRunInProgress = errors.New("a collection run is already in progress")

// Runner executes one collection run. *CollectService satisfies it.
type Runner interface {
	Run(ctx context.Context) (model.RunSummary, error)
}

var _ Runner = (*CollectService)(nil)

// Scheduler serializes runs from every trigger (HTTP and the optional
// interval timer) so at most one run is in flight per process.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	running  atomic.Bool
}

// NewScheduler creates a Scheduler. An interval of zero or less disables
// periodic runs; Run still works for on-demand triggers.
func NewScheduler(runner Runner, interval time.Duration) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
	}
}

// Run executes a run unless one is already in flight, in which case it
// returns ErrRunInProgress without touching the runner.
func (s *Scheduler) Run(ctx context.Context) (model.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return model.RunSummary{}, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.runner.Run(ctx)
}

// Running reports whether a run is currently in flight.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Start runs a collection immediately and then on every interval tick until
// ctx is canceled. It returns at once when periodic runs are disabled. Errors
// are logged; the run summary is already recorded by the runner.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		slog.Info("scheduled collection disabled")
		return
	}

	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("collection scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if _, err := s.Run(ctx); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			slog.Info("scheduled collection skipped, run already in progress")
			return
		}
		slog.Error("scheduled collection failed", "error", err)
	}
}
