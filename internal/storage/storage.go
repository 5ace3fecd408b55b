package storage

import (
	"context"
	"time"
)

// PublishRecord is the audit trail of one successful ledger publish to
// the external channel
type PublishRecord struct {
	ID           int64
	TxID         string
	PublishedAt  time.Time
	Users        int
	TotalSeconds int64
}

// Storage interface defines required storage operations
type Storage interface {
	RecordPublish(ctx context.Context, record *PublishRecord) error
	ListRecentPublishes(ctx context.Context, limit int) ([]*PublishRecord, error)
	Close() error
}
