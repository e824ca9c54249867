package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"account_sync/internal/domain"
)

type countingSyncer struct {
	calls    atomic.Int32
	err      error
	deadline atomic.Bool
}

func (c *countingSyncer) Sync(ctx context.Context) (*domain.CycleStats, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); ok {
		c.deadline.Store(true)
	}
	return &domain.CycleStats{}, c.err
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, 10*time.Millisecond, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 55*time.Millisecond)
	defer cancel()

	err := s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, syncer.calls.Load(), int32(3))
	assert.True(t, syncer.deadline.Load())
}

func TestScheduler_ContinuesAfterSyncError(t *testing.T) {
	syncer := &countingSyncer{err: errors.New("database unavailable")}
	s := NewScheduler(syncer, 10*time.Millisecond, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	_ = s.Start(ctx)
	assert.GreaterOrEqual(t, syncer.calls.Load(), int32(2))
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	syncer := &countingSyncer{}
	s := NewScheduler(syncer, time.Hour, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, int32(1), syncer.calls.Load())
}
