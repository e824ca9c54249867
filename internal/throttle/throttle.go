// Package throttle spaces outbound calls so that no bucket is called more
// often than its minimum interval allows.
package throttle

import (
	"context"
	"sync"
	"time"

	"account_sync/internal/endpoint"
	"account_sync/internal/metrics"
)

type rule struct {
	interval time.Duration
	scope    endpoint.ThrottleScope
}

type bucketKey struct {
	endpointID string
	accountID  int64
}

// bucket holds one permit. The permit is held while the holder waits out
// the interval, so concurrent callers are granted strictly one after another.
type bucket struct {
	permit   chan struct{}
	last     time.Time
	interval time.Duration
}

type Throttle struct {
	mu              sync.Mutex
	rules           map[string]rule
	buckets         map[bucketKey]*bucket
	defaultInterval time.Duration
}

// New creates a throttle. Endpoints without a configured rule share the
// default interval, one bucket per endpoint.
func New(defaultInterval time.Duration) *Throttle {
	return &Throttle{
		rules:           make(map[string]rule),
		buckets:         make(map[bucketKey]*bucket),
		defaultInterval: defaultInterval,
	}
}

// Configure sets the interval and scope of an endpoint. It must be called
// before the endpoint's first Acquire.
func (t *Throttle) Configure(endpointID string, minInterval time.Duration, scope endpoint.ThrottleScope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules[endpointID] = rule{interval: minInterval, scope: scope}
}

// ConfigureDescriptors applies each descriptor's MinInterval and ThrottleScope.
func (t *Throttle) ConfigureDescriptors(descriptors []endpoint.Descriptor) {
	for _, d := range descriptors {
		t.Configure(d.ID, d.MinInterval, d.ThrottleScope)
	}
}

// Acquire blocks until the resolved bucket's interval has elapsed since its
// last grant, then records the grant. It only fails when ctx ends first.
func (t *Throttle) Acquire(ctx context.Context, endpointID string, accountID int64) error {
	b := t.bucket(endpointID, accountID)
	start := time.Now()

	select {
	case b.permit <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-b.permit }()

	if !b.last.IsZero() {
		if wait := time.Until(b.last.Add(b.interval)); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	b.last = time.Now()
	metrics.ThrottleWait.WithLabelValues(endpointID).Observe(b.last.Sub(start).Seconds())
	return nil
}

func (t *Throttle) bucket(endpointID string, accountID int64) *bucket {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rules[endpointID]
	if !ok {
		r = rule{interval: t.defaultInterval, scope: endpoint.ScopeEndpoint}
	}

	key := bucketKey{endpointID: endpointID}
	if r.scope == endpoint.ScopeAccount {
		key.accountID = accountID
	}

	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{permit: make(chan struct{}, 1), interval: r.interval}
		t.buckets[key] = b
	}
	return b
}
