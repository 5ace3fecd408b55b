package core

import (
	"sort"
	"sync"
	"time"
)

// Ledger holds the cumulative watched-seconds balance per user. Entries
// are created lazily on first session start and never removed, so
// published snapshots and session-stop totals stay stable once a user
// has ever watched. It is safe for concurrent use.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*LedgerEntry
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		entries: make(map[string]*LedgerEntry),
	}
}

// EnsureEntry creates a zero-valued entry for the user if none exists.
// Idempotent.
func (l *Ledger) EnsureEntry(userID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[userID]; ok {
		return
	}
	l.entries[userID] = &LedgerEntry{
		UserID:     userID,
		LastUpdate: time.Now(),
	}
}

// SetTotalSeconds overwrites the user's total with a freshly recomputed
// value. This replaces the prior total rather than adding to it: each
// aggregation tick recomputes the sum of elapsed seconds across the
// user's currently open sessions, so stopping and restarting a session
// restarts that session's contribution from its own new start time.
// No-op if the user has no entry.
func (l *Ledger) SetTotalSeconds(userID string, seconds int64, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[userID]
	if !ok {
		return
	}
	entry.TotalSeconds = seconds
	entry.LastUpdate = now
}

// Get returns a copy of the user's ledger entry, if present
func (l *Ledger) Get(userID string) (LedgerEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entry, ok := l.entries[userID]
	if !ok {
		return LedgerEntry{}, false
	}
	return *entry, true
}

// Snapshot returns an immutable copy of all current entries, ordered by
// user ID
func (l *Ledger) Snapshot() LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(LedgerSnapshot, 0, len(l.entries))
	for _, entry := range l.entries {
		snapshot = append(snapshot, SnapshotEntry{
			UserID:       entry.UserID,
			TotalSeconds: entry.TotalSeconds,
		})
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].UserID < snapshot[j].UserID
	})
	return snapshot
}

// Size returns the number of ledger entries
func (l *Ledger) Size() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.entries)
}
