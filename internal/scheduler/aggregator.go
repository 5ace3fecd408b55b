package scheduler

import (
	"context"
	"log/slog"
	"time"

	"streammeter/internal/core"
	"streammeter/internal/metrics"
	"streammeter/internal/storage"
)

const publishTimeout = 5 * time.Second

// Registry interface for reading active sessions
type Registry interface {
	ListActive() []*core.Session
}

// Ledger interface for recomputing and snapshotting balances
type Ledger interface {
	SetTotalSeconds(userID string, seconds int64, now time.Time)
	Snapshot() core.LedgerSnapshot
	Size() int
}

// Publisher interface for pushing snapshots to the external channel
type Publisher interface {
	Publish(ctx context.Context, snapshot core.LedgerSnapshot) (string, error)
}

// PublishStore interface for the publish audit trail
type PublishStore interface {
	RecordPublish(ctx context.Context, record *storage.PublishRecord) error
}

// Aggregator recomputes every active user's live total once per tick
// and publishes a full ledger snapshot
type Aggregator struct {
	registry  Registry
	ledger    Ledger
	publisher Publisher
	store     PublishStore // optional, may be nil
	interval  time.Duration
	stopChan  chan struct{}
	logger    *slog.Logger
}

// NewAggregator creates a new aggregation cycle
func NewAggregator(registry Registry, ledger Ledger, publisher Publisher, store PublishStore, interval time.Duration, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		registry:  registry,
		ledger:    ledger,
		publisher: publisher,
		store:     store,
		interval:  interval,
		stopChan:  make(chan struct{}),
		logger:    logger,
	}
}

// Start begins the aggregation loop
func (a *Aggregator) Start() {
	a.logger.Info("Aggregator started", "interval", a.interval.String())
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.tick()
		case <-a.stopChan:
			a.logger.Info("Aggregator stopped")
			return
		}
	}
}

// Stop stops the aggregation loop
func (a *Aggregator) Stop() {
	close(a.stopChan)
}

// tick performs one aggregation cycle. Errors never halt subsequent
// ticks; a failed publish is superseded by the next tick's republish.
func (a *Aggregator) tick() {
	now := time.Now()
	sessions := a.registry.ListActive()

	metrics.ActiveSessions.Set(float64(len(sessions)))

	// Sum elapsed seconds across each user's open sessions. A user may
	// have more than one concurrent session.
	totals := make(map[string]int64)
	for _, session := range sessions {
		totals[session.UserID] += session.ElapsedSeconds(now)
	}

	// Replace each active user's total with the recomputed live sum.
	// Users with no open session keep their last-known total untouched.
	for userID, seconds := range totals {
		a.ledger.SetTotalSeconds(userID, seconds, now)
	}

	if a.ledger.Size() == 0 {
		return
	}

	snapshot := a.ledger.Snapshot()
	metrics.LedgerUsers.Set(float64(len(snapshot)))

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	start := time.Now()
	txID, err := a.publisher.Publish(ctx, snapshot)
	metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PublishesTotal.WithLabelValues("failure").Inc()
		a.logger.Error("Failed to publish ledger snapshot",
			"users", len(snapshot),
			"error", err)
		return
	}

	metrics.PublishesTotal.WithLabelValues("success").Inc()
	a.logger.Debug("Ledger snapshot published",
		"tx_id", txID,
		"users", len(snapshot),
		"active_sessions", len(sessions))

	if a.store == nil {
		return
	}

	var totalSeconds int64
	for _, entry := range snapshot {
		totalSeconds += entry.TotalSeconds
	}

	record := &storage.PublishRecord{
		TxID:         txID,
		PublishedAt:  now,
		Users:        len(snapshot),
		TotalSeconds: totalSeconds,
	}
	if err := a.store.RecordPublish(ctx, record); err != nil {
		a.logger.Error("Failed to record publish", "tx_id", txID, "error", err)
	}
}
