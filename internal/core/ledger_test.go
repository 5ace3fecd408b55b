package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_EnsureEntryIdempotent(t *testing.T) {
	ledger := NewLedger()

	ledger.EnsureEntry("u1")
	ledger.SetTotalSeconds("u1", 10, time.Now())

	// A second ensure must not reset the balance
	ledger.EnsureEntry("u1")

	entry, ok := ledger.Get("u1")
	require.True(t, ok)
	assert.Equal(t, int64(10), entry.TotalSeconds)
	assert.Equal(t, 1, ledger.Size())
}

func TestLedger_SetTotalSecondsReplaces(t *testing.T) {
	ledger := NewLedger()
	ledger.EnsureEntry("u1")

	now := time.Now()
	ledger.SetTotalSeconds("u1", 10, now)
	ledger.SetTotalSeconds("u1", 4, now)

	// Recompute semantics: the new value replaces the old one, it is
	// not added to it
	entry, ok := ledger.Get("u1")
	require.True(t, ok)
	assert.Equal(t, int64(4), entry.TotalSeconds)
	assert.Equal(t, now, entry.LastUpdate)
}

func TestLedger_SetTotalSecondsUnknownUserNoOp(t *testing.T) {
	ledger := NewLedger()

	ledger.SetTotalSeconds("ghost", 99, time.Now())

	_, ok := ledger.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, ledger.Size())
}

func TestLedger_SnapshotSortedAndDetached(t *testing.T) {
	ledger := NewLedger()
	ledger.EnsureEntry("zoe")
	ledger.EnsureEntry("amy")
	ledger.SetTotalSeconds("zoe", 5, time.Now())
	ledger.SetTotalSeconds("amy", 7, time.Now())

	snapshot := ledger.Snapshot()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "amy", snapshot[0].UserID)
	assert.Equal(t, int64(7), snapshot[0].TotalSeconds)
	assert.Equal(t, "zoe", snapshot[1].UserID)
	assert.Equal(t, int64(5), snapshot[1].TotalSeconds)

	// Mutating the snapshot must not affect the ledger
	snapshot[0].TotalSeconds = 999
	entry, _ := ledger.Get("amy")
	assert.Equal(t, int64(7), entry.TotalSeconds)
}

func TestLedger_SnapshotIdempotent(t *testing.T) {
	ledger := NewLedger()
	ledger.EnsureEntry("u1")
	ledger.EnsureEntry("u2")
	ledger.SetTotalSeconds("u1", 3, time.Now())

	first := ledger.Snapshot()
	second := ledger.Snapshot()
	assert.Equal(t, first, second)
}

func TestLedger_GetReturnsCopy(t *testing.T) {
	ledger := NewLedger()
	ledger.EnsureEntry("u1")
	ledger.SetTotalSeconds("u1", 3, time.Now())

	entry, ok := ledger.Get("u1")
	require.True(t, ok)
	entry.TotalSeconds = 1000

	fresh, _ := ledger.Get("u1")
	assert.Equal(t, int64(3), fresh.TotalSeconds)
}
