package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"streammeter/internal/core"
)

// LogPublisher is a development publisher that logs snapshots instead
// of pushing them anywhere. Always ready.
type LogPublisher struct {
	logger *slog.Logger
	seq    atomic.Int64
}

// NewLog creates a log-only publisher
func NewLog(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the snapshot and fabricates a sequential transaction ID
func (p *LogPublisher) Publish(ctx context.Context, snapshot core.LedgerSnapshot) (string, error) {
	txID := fmt.Sprintf("log-%d", p.seq.Add(1))
	p.logger.Info("Ledger snapshot published",
		"component", "publisher",
		"tx_id", txID,
		"users", len(snapshot))
	return txID, nil
}

// Ready always reports true
func (p *LogPublisher) Ready() bool {
	return true
}

// Close is a no-op
func (p *LogPublisher) Close() error {
	return nil
}
