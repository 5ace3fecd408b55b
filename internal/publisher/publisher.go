package publisher

import (
	"context"
	"errors"

	"streammeter/internal/core"
)

// ErrNotReady is returned when a publish is attempted before the
// publisher has finished initializing.
var ErrNotReady = errors.New("publisher not ready")

// Publisher pushes ledger snapshots to an external append-only channel
// that downstream consumers subscribe to. Publishing is best-effort:
// a failed publish is superseded by the next tick's republish.
type Publisher interface {
	// Publish appends the snapshot to the channel and returns a
	// transaction identifier for the appended entry.
	Publish(ctx context.Context, snapshot core.LedgerSnapshot) (string, error)

	// Ready reports whether the publisher has completed initialization
	Ready() bool

	// Close releases the underlying connection, if any
	Close() error
}
