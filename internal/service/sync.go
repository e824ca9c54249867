package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"account_sync/internal/config"
	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
	"account_sync/internal/metrics"
)

// finishTimeout bounds the status write that closes an attempt, which runs
// even when the attempt's own context has been cancelled.
const finishTimeout = 10 * time.Second

// SyncService runs fetch, map and commit for every due (account, endpoint)
// pair. Accounts are processed in parallel by a bounded pool; the endpoints
// of one account run sequentially under that account's lock.
type SyncService struct {
	accounts  AccountStore
	versions  VersionStore
	tracker   Tracker
	throttle  Throttle
	registry  *endpoint.Registry
	publisher Publisher
	logger    *slog.Logger
	config    config.SyncConfig
	now       func() time.Time

	locks sync.Map
}

func NewSyncService(
	accounts AccountStore,
	versions VersionStore,
	tracker Tracker,
	throttle Throttle,
	registry *endpoint.Registry,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	return &SyncService{
		accounts:  accounts,
		versions:  versions,
		tracker:   tracker,
		throttle:  throttle,
		registry:  registry,
		publisher: publisher,
		logger:    logger.With("component", "sync"),
		config:    cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for attempt and commit times.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

// Sync runs one cycle over all active accounts.
func (s *SyncService) Sync(ctx context.Context) (*domain.CycleStats, error) {
	startTime := time.Now()

	accounts, err := s.accounts.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	s.logger.Info("starting sync cycle",
		"accounts", len(accounts),
		"endpoints", s.registry.Len(),
		"workers", s.config.Workers,
	)

	stats := &domain.CycleStats{Accounts: len(accounts)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(max(s.config.Workers, 1))
	for _, account := range accounts {
		g.Go(func() error {
			accountStats := s.syncAccount(ctx, account)
			mu.Lock()
			stats.Add(accountStats)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	stats.Duration = time.Since(startTime)
	metrics.CycleDuration.Observe(stats.Duration.Seconds())

	s.logger.Info("sync cycle completed",
		"attempted", stats.Attempted,
		"updated", stats.Updated,
		"failed", stats.Failed,
		"denied", stats.Denied,
		"skipped", stats.Skipped,
		"inserted", stats.Inserted,
		"evolved", stats.Evolved,
		"removed", stats.Removed,
		"duration", stats.Duration,
	)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// SyncAccount runs every due endpoint of one account immediately.
func (s *SyncService) SyncAccount(ctx context.Context, accountID int64) (*domain.CycleStats, error) {
	account, err := s.accounts.Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if account == nil || !account.Active {
		return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accountID)
	}

	stats := s.syncAccount(ctx, *account)
	stats.Accounts = 1
	return &stats, nil
}

func (s *SyncService) syncAccount(ctx context.Context, account domain.SyncAccount) domain.CycleStats {
	lock := s.accountLock(account.ID)
	lock.Lock()
	defer lock.Unlock()

	logger := s.logger.With("account_id", account.ID)

	var stats domain.CycleStats
	for _, d := range s.registry.All() {
		if ctx.Err() != nil {
			break
		}
		stats.Add(s.syncEndpoint(ctx, account, d, logger.With("endpoint", d.ID)))
	}
	return stats
}

func (s *SyncService) syncEndpoint(ctx context.Context, account domain.SyncAccount, d endpoint.Descriptor, logger *slog.Logger) domain.CycleStats {
	var stats domain.CycleStats
	now := s.clock()

	due, err := s.tracker.Due(ctx, account.ID, d.ID, now)
	if err != nil {
		logger.Error("failed to check eligibility", "error", err)
		stats.Failed++
		return stats
	}
	if !due {
		logger.Debug("endpoint not due")
		stats.Skipped++
		return stats
	}

	attempt, err := s.tracker.Begin(ctx, account.ID, d.ID, now)
	if err != nil {
		if errors.Is(err, domain.ErrAttemptInProgress) || errors.Is(err, domain.ErrNotAllowed) {
			logger.Debug("endpoint skipped", "reason", err)
			stats.Skipped++
			return stats
		}
		logger.Error("failed to begin attempt", "error", err)
		stats.Failed++
		return stats
	}
	stats.Attempted++

	startTime := time.Now()
	result, attemptErr := s.attempt(ctx, account, d, logger)
	metrics.SyncAttemptDuration.WithLabelValues(d.ID).Observe(time.Since(startTime).Seconds())

	// The closing row must be written even if the cycle is being cancelled.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	if attemptErr != nil {
		s.recordFailure(finishCtx, attempt, d, attemptErr, logger, &stats)
		return stats
	}

	c := result.commit
	detail := fmt.Sprintf("inserted=%d evolved=%d unchanged=%d removed=%d",
		c.Inserted, c.Evolved, c.Unchanged, c.Removed)
	if _, err := s.tracker.Succeed(finishCtx, attempt, result.committedAt, result.next, detail); err != nil {
		logger.Error("failed to record success", "error", err)
		stats.Failed++
		return stats
	}

	stats.Updated++
	stats.Inserted += c.Inserted
	stats.Evolved += c.Evolved
	stats.Removed += c.Removed

	metrics.SyncAttempts.WithLabelValues(d.ID, string(domain.StateUpdated)).Inc()
	metrics.EntityWrites.WithLabelValues(d.ID, "inserted").Add(float64(c.Inserted))
	metrics.EntityWrites.WithLabelValues(d.ID, "evolved").Add(float64(c.Evolved))
	metrics.EntityWrites.WithLabelValues(d.ID, "removed").Add(float64(c.Removed))

	logger.Debug("endpoint updated",
		"inserted", c.Inserted,
		"evolved", c.Evolved,
		"unchanged", c.Unchanged,
		"removed", c.Removed,
		"next_eligible", result.next,
	)

	s.publish(finishCtx, account, d, result, logger)
	return stats
}

type attemptResult struct {
	commit      domain.CommitStats
	committedAt time.Time
	next        time.Time
}

// attempt is all-or-nothing up to the commit: a failed fetch or an
// unmappable payload never reaches the store.
func (s *SyncService) attempt(ctx context.Context, account domain.SyncAccount, d endpoint.Descriptor, logger *slog.Logger) (attemptResult, error) {
	var res attemptResult

	if s.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.AttemptTimeout)
		defer cancel()
	}

	fetched, err := s.fetchWithRetry(ctx, account, d, logger)
	if err != nil {
		return res, fmt.Errorf("fetch %s: %w", d.ID, err)
	}

	candidates, err := endpoint.MapPayload(d, fetched.Payload)
	if err != nil {
		return res, err
	}

	res.committedAt = s.clock()
	res.commit, err = endpoint.Commit(ctx, s.versions, d, account.ID, candidates, res.committedAt)
	if err != nil {
		return res, fmt.Errorf("commit %s: %w", d.ID, err)
	}

	res.next = s.nextEligible(fetched.Expires, res.committedAt, d.DefaultInterval)
	return res, nil
}

func (s *SyncService) fetchWithRetry(ctx context.Context, account domain.SyncAccount, d endpoint.Descriptor, logger *slog.Logger) (endpoint.FetchResult, error) {
	maxAttempts := max(s.config.Retry.MaxAttempts, 1)

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.throttle.Acquire(ctx, d.ID, account.ID); err != nil {
			return endpoint.FetchResult{}, fmt.Errorf("acquire throttle: %w", err)
		}

		var result endpoint.FetchResult
		result, err = d.Fetch(ctx, account)
		if err == nil {
			return result, nil
		}

		if domain.IsPermanent(err) || attempt == maxAttempts {
			return endpoint.FetchResult{}, fmt.Errorf("attempt %d: %w", attempt, err)
		}

		backoff := s.calculateBackoff(attempt, err)
		logger.Warn("fetch failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return endpoint.FetchResult{}, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return endpoint.FetchResult{}, err
}

func (s *SyncService) calculateBackoff(attempt int, err error) time.Duration {
	backoff := s.config.Retry.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}

	var remote *domain.RemoteError
	if errors.As(err, &remote) && remote.RetryAfter > backoff {
		backoff = remote.RetryAfter
	}

	if s.config.Retry.MaxBackoff > 0 && backoff > s.config.Retry.MaxBackoff {
		backoff = s.config.Retry.MaxBackoff
	}
	return backoff
}

func (s *SyncService) recordFailure(ctx context.Context, attempt *domain.EndpointStatus, d endpoint.Descriptor, err error, logger *slog.Logger, stats *domain.CycleStats) {
	at := s.clock()
	state := domain.StateSyncError

	var recordErr error
	switch {
	case domain.IsPermanent(err):
		state = domain.StateNotAllowed
		logger.Warn("endpoint not allowed for account", "error", err)
		_, recordErr = s.tracker.Deny(ctx, attempt, at, err.Error())
		stats.Denied++
	case errors.Is(err, domain.ErrInvariantViolation):
		metrics.InvariantViolations.WithLabelValues(d.ID).Inc()
		logger.Error("invariant violation, attempt aborted", "error", err)
		_, recordErr = s.tracker.Fail(ctx, attempt, at, err.Error())
		stats.Failed++
	default:
		logger.Warn("attempt failed", "error", err)
		_, recordErr = s.tracker.Fail(ctx, attempt, at, err.Error())
		stats.Failed++
	}

	metrics.SyncAttempts.WithLabelValues(d.ID, string(state)).Inc()
	if recordErr != nil {
		logger.Error("failed to record attempt outcome", "state", state, "error", recordErr)
	}
}

func (s *SyncService) publish(ctx context.Context, account domain.SyncAccount, d endpoint.Descriptor, res attemptResult, logger *slog.Logger) {
	if s.publisher == nil || !res.commit.Changed() {
		return
	}

	event := &domain.ChangeEvent{
		AccountID:   account.ID,
		EndpointID:  d.ID,
		EntityType:  d.EntityType,
		Inserted:    res.commit.Inserted,
		Evolved:     res.commit.Evolved,
		Removed:     res.commit.Removed,
		CommittedAt: res.committedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish change event", "error", err)
	}
}

// nextEligible prefers the server's expiry hint when it lies in the future.
func (s *SyncService) nextEligible(expires *time.Time, at time.Time, interval time.Duration) time.Time {
	if expires != nil && expires.After(at) {
		return expires.UTC()
	}
	if interval <= 0 {
		interval = s.config.DefaultInterval
	}
	return at.Add(interval)
}

// clock returns the current time at the store's precision.
func (s *SyncService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *SyncService) accountLock(accountID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(accountID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
