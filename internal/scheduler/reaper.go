package scheduler

import (
	"log/slog"
	"time"

	"streammeter/internal/core"
	"streammeter/internal/metrics"
)

// ReaperRegistry interface for scanning and evicting sessions
type ReaperRegistry interface {
	ListActive() []*core.Session
	Remove(id string) (*core.Session, bool)
}

// Reaper force-closes sessions that exceed the maximum allowed
// duration, protecting the registry from unbounded session leakage.
// No ledger adjustment is made on forced removal: the aggregation
// cycle already captured elapsed time up to its last tick.
type Reaper struct {
	registry    ReaperRegistry
	maxDuration time.Duration
	interval    time.Duration
	stopChan    chan struct{}
	logger      *slog.Logger
}

// NewReaper creates a new stale session reaper
func NewReaper(registry ReaperRegistry, maxDuration, interval time.Duration, logger *slog.Logger) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reaper{
		registry:    registry,
		maxDuration: maxDuration,
		interval:    interval,
		stopChan:    make(chan struct{}),
		logger:      logger,
	}
}

// Start begins the reaper loop
func (r *Reaper) Start() {
	r.logger.Info("Reaper started",
		"interval", r.interval.String(),
		"max_session_duration", r.maxDuration.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.tick()
		case <-r.stopChan:
			r.logger.Info("Reaper stopped")
			return
		}
	}
}

// Stop stops the reaper loop
func (r *Reaper) Stop() {
	close(r.stopChan)
}

// tick scans all active sessions and evicts expired ones
func (r *Reaper) tick() {
	now := time.Now()

	for _, session := range r.registry.ListActive() {
		age := now.Sub(session.StartTime)
		if age <= r.maxDuration {
			continue
		}

		if _, ok := r.registry.Remove(session.ID); !ok {
			// Stopped concurrently, nothing to do
			continue
		}

		metrics.SessionsReaped.Inc()
		r.logger.Info("Stale session reaped",
			"session_id", session.ID,
			"user_id", session.UserID,
			"age", age.String())
	}
}
