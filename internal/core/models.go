package core

import (
	"errors"
	"time"
)

// Session represents one open watch interval tied to a user and content item.
// All fields are immutable after creation; the registry owns the only
// long-lived reference.
type Session struct {
	ID        string
	UserID    string
	ContentID string
	StartTime time.Time
}

// ElapsedSeconds returns whole seconds elapsed since the session started,
// floored. Never negative.
func (s *Session) ElapsedSeconds(now time.Time) int64 {
	if now.Before(s.StartTime) {
		return 0
	}
	return int64(now.Sub(s.StartTime) / time.Second)
}

// LedgerEntry represents one user's running watched-seconds balance.
type LedgerEntry struct {
	UserID       string
	TotalSeconds int64
	LastUpdate   time.Time
}

// SnapshotEntry is one user's balance in a published ledger snapshot.
type SnapshotEntry struct {
	UserID       string `json:"userId"`
	TotalSeconds int64  `json:"totalSeconds"`
}

// LedgerSnapshot is an immutable point-in-time copy of all ledger entries,
// ordered by user ID.
type LedgerSnapshot []SnapshotEntry

// Validation and lifecycle errors
var (
	ErrMissingUserID     = errors.New("userId is required")
	ErrMissingContentID  = errors.New("contentId is required")
	ErrMissingSessionID  = errors.New("sessionId is required")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNotSessionOwner   = errors.New("session does not belong to user")
	ErrPublisherNotReady = errors.New("publisher is not initialized")
)
