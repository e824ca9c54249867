package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"account_sync/internal/domain"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func walletKey() domain.EntityKey {
	return domain.EntityKey{AccountID: 1, EntityType: "wallet", NaturalKey: domain.SingletonKey}
}

func TestVersionStore_EvolveCycle(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := walletKey()

	changed, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"balance":"100.00"}`), t0)
	require.NoError(t, err)
	assert.True(t, changed)

	open, err := s.GetOpen(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, open)

	// Semantically equal payload is not a change.
	changed, err = s.Evolve(ctx, open, key, domain.Attributes(`{ "balance" : "100.00" }`), t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.Evolve(ctx, open, key, domain.Attributes(`{"balance":"150.00"}`), t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)

	history, err := s.History(ctx, key, t0, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[0].ValidTo)
	assert.True(t, history[0].ValidTo.Equal(history[1].ValidFrom))
}

func TestVersionStore_StaleView(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := walletKey()

	_, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"v":1}`), t0)
	require.NoError(t, err)

	_, err = s.Evolve(ctx, nil, key, domain.Attributes(`{"v":2}`), t0.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrStaleVersion)

	stale := &domain.VersionedEntity{AccountID: 1, EntityType: "wallet", NaturalKey: domain.SingletonKey, ValidFrom: t0.Add(-time.Hour)}
	_, err = s.Evolve(ctx, stale, key, domain.Attributes(`{"v":2}`), t0.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrStaleVersion)
}

func TestVersionStore_RemoveOutOfOrder(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := walletKey()

	_, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"v":1}`), t0)
	require.NoError(t, err)
	open, err := s.GetOpen(ctx, key)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Remove(ctx, *open, t0), domain.ErrOutOfOrder)
	require.NoError(t, s.Remove(ctx, *open, t0.Add(time.Minute)))
	assert.ErrorIs(t, s.Remove(ctx, *open, t0.Add(time.Hour)), domain.ErrStaleVersion)

	// A removed key may come back as a new open version.
	changed, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"v":1}`), t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestVersionStore_ReinsertBeforeTombstoneRejected(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := walletKey()

	_, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"v":1}`), t0)
	require.NoError(t, err)
	open, err := s.GetOpen(ctx, key)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, *open, t0.Add(2*time.Hour)))

	changed, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"v":2}`), t0.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrOutOfOrder)
	assert.False(t, changed)

	history, err := s.History(ctx, key, t0, t0.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)

	attrs, ok, err := s.Snapshot(ctx, key, t0.Add(90*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"v":1}`, string(attrs))

	// Reopening exactly at the tombstone is adjacent, not overlapping.
	changed, err = s.Evolve(ctx, nil, key, domain.Attributes(`{"v":2}`), t0.Add(2*time.Hour))
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestVersionStore_TwoOpenVersionsIsInvariantViolation(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := walletKey()

	s.appendLocked(key, domain.Attributes(`{"v":1}`), t0)
	s.appendLocked(key, domain.Attributes(`{"v":2}`), t0.Add(time.Hour))

	_, err := s.GetOpen(ctx, key)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	_, err = s.Evolve(ctx, nil, key, domain.Attributes(`{"v":3}`), t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestVersionStore_ConcurrentEvolveSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := walletKey()

	_, err := s.Evolve(ctx, nil, key, domain.Attributes(`{"v":0}`), t0)
	require.NoError(t, err)
	open, err := s.GetOpen(ctx, key)
	require.NoError(t, err)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			attrs, _ := domain.NewAttributes(map[string]int{"v": i + 1})
			changed, err := s.Evolve(ctx, open, key, attrs, t0.Add(time.Hour))
			if err == nil && changed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	_, err = s.GetOpen(ctx, key)
	assert.NoError(t, err)
}

func TestVersionStore_RetrieveAllOpenRestartable(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()

	for _, k := range []domain.NaturalKey{"c", "a", "b"} {
		_, err := s.Evolve(ctx, nil, domain.EntityKey{AccountID: 1, EntityType: "title", NaturalKey: k}, domain.Attributes(`{}`), t0)
		require.NoError(t, err)
	}
	_, err := s.Evolve(ctx, nil, domain.EntityKey{AccountID: 1, EntityType: "title", NaturalKey: "late"}, domain.Attributes(`{}`), t0.Add(time.Hour))
	require.NoError(t, err)

	seq := s.RetrieveAllOpen(ctx, 1, "title", t0)
	for range 2 {
		var keys []domain.NaturalKey
		for v, err := range seq {
			require.NoError(t, err)
			keys = append(keys, v.NaturalKey)
		}
		assert.Equal(t, []domain.NaturalKey{"a", "b", "c"}, keys)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	for _, err := range s.RetrieveAllOpen(canceled, 1, "title", t0) {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestVersionStore_InsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	s := NewVersionStore()
	key := domain.EntityKey{AccountID: 1, EntityType: "opportunity", NaturalKey: "7"}

	ok, err := s.InsertIfAbsent(ctx, key, domain.Attributes(`{"v":1}`), t0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.InsertIfAbsent(ctx, key, domain.Attributes(`{"v":2}`), t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatusStore_History(t *testing.T) {
	ctx := context.Background()
	s := NewStatusStore()

	for _, state := range []domain.SyncState{domain.StateInProgress, domain.StateUpdated, domain.StateInProgress} {
		require.NoError(t, s.Append(ctx, &domain.EndpointStatus{AccountID: 1, EndpointID: "wallet", State: state}))
	}

	latest, err := s.Latest(ctx, 1, "wallet")
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest.ID)

	rows, err := s.History(ctx, 1, "wallet", 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].ID)
	assert.Equal(t, int64(2), rows[1].ID)

	rows, err = s.History(ctx, 1, "wallet", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)

	latest, err = s.Latest(ctx, 2, "wallet")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestAccountStore(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore(
		domain.SyncAccount{ID: 3, Active: true},
		domain.SyncAccount{ID: 1, Active: true},
		domain.SyncAccount{ID: 2, Active: false},
	)

	active, err := s.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, int64(3), active[1].ID)

	require.NoError(t, s.UpsertBatch(ctx, []domain.SyncAccount{{ID: 2, Active: true}}))
	got, err := s.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Active)

	got, err = s.Get(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}
