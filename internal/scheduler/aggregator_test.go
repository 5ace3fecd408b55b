package scheduler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streammeter/internal/core"
	"streammeter/internal/storage"
)

// Mock implementations

type mockPublisher struct {
	snapshots []core.LedgerSnapshot
	fail      bool
}

func (m *mockPublisher) Publish(ctx context.Context, snapshot core.LedgerSnapshot) (string, error) {
	m.snapshots = append(m.snapshots, snapshot)
	if m.fail {
		return "", errors.New("publish failed")
	}
	return fmt.Sprintf("tx-%d", len(m.snapshots)), nil
}

type mockPublishStore struct {
	records []*storage.PublishRecord
	fail    bool
}

func (m *mockPublishStore) RecordPublish(ctx context.Context, record *storage.PublishRecord) error {
	if m.fail {
		return errors.New("insert failed")
	}
	m.records = append(m.records, record)
	return nil
}

func backdatedSession(registry *core.Registry, userID, contentID string, age time.Duration) *core.Session {
	session := registry.Create(userID, contentID)
	session.StartTime = time.Now().Add(-age)
	return session
}

// Tests

func TestAggregator_Tick_SumsAcrossUserSessions(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}

	// One user with two concurrent sessions started 5s and 3s ago
	backdatedSession(registry, "u1", "c1", 5*time.Second)
	backdatedSession(registry, "u1", "c2", 3*time.Second)
	backdatedSession(registry, "u2", "c1", 2*time.Second)
	ledger.EnsureEntry("u1")
	ledger.EnsureEntry("u2")

	agg := NewAggregator(registry, ledger, pub, nil, time.Second, nil)
	agg.tick()

	// Seconds from each open session are summed, not just the latest
	entry, ok := ledger.Get("u1")
	require.True(t, ok)
	assert.Equal(t, int64(8), entry.TotalSeconds)

	entry, ok = ledger.Get("u2")
	require.True(t, ok)
	assert.Equal(t, int64(2), entry.TotalSeconds)

	require.Len(t, pub.snapshots, 1)
	assert.Equal(t, core.LedgerSnapshot{
		{UserID: "u1", TotalSeconds: 8},
		{UserID: "u2", TotalSeconds: 2},
	}, pub.snapshots[0])
}

func TestAggregator_Tick_ReplacesNotAccumulates(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}

	backdatedSession(registry, "u1", "c1", 4*time.Second)
	ledger.EnsureEntry("u1")
	ledger.SetTotalSeconds("u1", 100, time.Now())

	agg := NewAggregator(registry, ledger, pub, nil, time.Second, nil)
	agg.tick()

	// The tick recomputes from session start times, discarding the old value
	entry, _ := ledger.Get("u1")
	assert.Equal(t, int64(4), entry.TotalSeconds)
}

func TestAggregator_Tick_IdleUserKeepsLastTotal(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}

	// u2 watched earlier but has no open session now
	ledger.EnsureEntry("u2")
	ledger.SetTotalSeconds("u2", 42, time.Now())

	backdatedSession(registry, "u1", "c1", 1*time.Second)
	ledger.EnsureEntry("u1")

	agg := NewAggregator(registry, ledger, pub, nil, time.Second, nil)
	agg.tick()

	entry, _ := ledger.Get("u2")
	assert.Equal(t, int64(42), entry.TotalSeconds)

	// The published snapshot carries ALL entries, not just updated ones
	require.Len(t, pub.snapshots, 1)
	assert.Len(t, pub.snapshots[0], 2)
}

func TestAggregator_Tick_EmptyLedgerSkipsPublish(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}

	agg := NewAggregator(registry, ledger, pub, nil, time.Second, nil)
	agg.tick()

	assert.Empty(t, pub.snapshots)
}

func TestAggregator_Tick_PublishFailureDoesNotHaltCycle(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{fail: true}
	store := &mockPublishStore{}

	backdatedSession(registry, "u1", "c1", 2*time.Second)
	ledger.EnsureEntry("u1")

	agg := NewAggregator(registry, ledger, pub, store, time.Second, nil)
	agg.tick()
	agg.tick()

	// Both ticks attempted a publish; the ledger stays ahead of the channel
	assert.Len(t, pub.snapshots, 2)
	entry, _ := ledger.Get("u1")
	assert.Equal(t, int64(2), entry.TotalSeconds)

	// Failed publishes are not recorded in the audit trail
	assert.Empty(t, store.records)
}

func TestAggregator_Tick_RecordsPublish(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}
	store := &mockPublishStore{}

	backdatedSession(registry, "u1", "c1", 3*time.Second)
	backdatedSession(registry, "u2", "c2", 2*time.Second)
	ledger.EnsureEntry("u1")
	ledger.EnsureEntry("u2")

	agg := NewAggregator(registry, ledger, pub, store, time.Second, nil)
	agg.tick()

	require.Len(t, store.records, 1)
	record := store.records[0]
	assert.Equal(t, "tx-1", record.TxID)
	assert.Equal(t, 2, record.Users)
	assert.Equal(t, int64(5), record.TotalSeconds)
	assert.False(t, record.PublishedAt.IsZero())
}

func TestAggregator_Tick_AuditFailureDoesNotHaltCycle(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}
	store := &mockPublishStore{fail: true}

	backdatedSession(registry, "u1", "c1", 1*time.Second)
	ledger.EnsureEntry("u1")

	agg := NewAggregator(registry, ledger, pub, store, time.Second, nil)
	agg.tick()
	agg.tick()

	assert.Len(t, pub.snapshots, 2)
}

func TestAggregator_StartStop(t *testing.T) {
	registry := core.NewRegistry()
	ledger := core.NewLedger()
	pub := &mockPublisher{}

	backdatedSession(registry, "u1", "c1", 2*time.Second)
	ledger.EnsureEntry("u1")

	agg := NewAggregator(registry, ledger, pub, nil, 10*time.Millisecond, nil)

	done := make(chan struct{})
	go func() {
		agg.Start()
		close(done)
	}()

	time.Sleep(100 * time.Millisecond)
	agg.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("aggregator did not stop")
	}

	assert.NotEmpty(t, pub.snapshots)
}
