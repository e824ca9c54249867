// Package tracker records the sync health of every (account, endpoint) pair
// as an append-only sequence of status rows.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"account_sync/internal/domain"
)

// StatusStore persists status rows. Rows are appended, never updated.
type StatusStore interface {
	Append(ctx context.Context, status *domain.EndpointStatus) error
	Latest(ctx context.Context, accountID int64, endpointID string) (*domain.EndpointStatus, error)
	History(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error)
}

type Config struct {
	// ErrorBackoff is the delay after the first consecutive SYNC_ERROR; it
	// doubles per further failure up to MaxErrorBackoff.
	ErrorBackoff    time.Duration
	MaxErrorBackoff time.Duration
	// NotAllowedHold only informs operators; NOT_ALLOWED is never due until re-enabled.
	NotAllowedHold time.Duration
	// StaleAfter is how long an IN_PROGRESS row may stand before the attempt
	// is considered abandoned.
	StaleAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		ErrorBackoff:    time.Minute,
		MaxErrorBackoff: 6 * time.Hour,
		NotAllowedHold:  30 * 24 * time.Hour,
		StaleAfter:      15 * time.Minute,
	}
}

// historyScan bounds how far back consecutive failures are counted.
const historyScan = 64

type Tracker struct {
	store  StatusStore
	config Config
	logger *slog.Logger
}

func New(store StatusStore, cfg Config, logger *slog.Logger) *Tracker {
	def := DefaultConfig()
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = def.ErrorBackoff
	}
	if cfg.MaxErrorBackoff < cfg.ErrorBackoff {
		cfg.MaxErrorBackoff = max(def.MaxErrorBackoff, cfg.ErrorBackoff)
	}
	if cfg.NotAllowedHold <= 0 {
		cfg.NotAllowedHold = def.NotAllowedHold
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}
	return &Tracker{
		store:  store,
		config: cfg,
		logger: logger.With("component", "tracker"),
	}
}

// Current returns the latest status, or a NOT_PROCESSED status that is
// immediately eligible when the pair has never been attempted.
func (t *Tracker) Current(ctx context.Context, accountID int64, endpointID string) (domain.EndpointStatus, error) {
	latest, err := t.store.Latest(ctx, accountID, endpointID)
	if err != nil {
		return domain.EndpointStatus{}, fmt.Errorf("latest status: %w", err)
	}
	if latest == nil {
		return domain.EndpointStatus{
			AccountID:  accountID,
			EndpointID: endpointID,
			State:      domain.StateNotProcessed,
		}, nil
	}
	return *latest, nil
}

func (t *Tracker) History(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error) {
	rows, err := t.store.History(ctx, accountID, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("status history: %w", err)
	}
	return rows, nil
}

// Due reports whether the pair should be attempted at now.
func (t *Tracker) Due(ctx context.Context, accountID int64, endpointID string, now time.Time) (bool, error) {
	current, err := t.Current(ctx, accountID, endpointID)
	if err != nil {
		return false, err
	}
	return t.due(current, now), nil
}

func (t *Tracker) due(current domain.EndpointStatus, now time.Time) bool {
	switch current.State {
	case domain.StateNotAllowed:
		return false
	case domain.StateInProgress:
		return t.abandoned(current, now)
	default:
		return current.Eligible(now)
	}
}

func (t *Tracker) abandoned(current domain.EndpointStatus, now time.Time) bool {
	return !now.Before(current.AttemptTime.Add(t.config.StaleAfter))
}

// Begin appends the IN_PROGRESS row that opens an attempt.
func (t *Tracker) Begin(ctx context.Context, accountID int64, endpointID string, now time.Time) (*domain.EndpointStatus, error) {
	current, err := t.Current(ctx, accountID, endpointID)
	if err != nil {
		return nil, err
	}

	switch current.State {
	case domain.StateNotAllowed:
		return nil, fmt.Errorf("%w: account %d endpoint %s", domain.ErrNotAllowed, accountID, endpointID)
	case domain.StateInProgress:
		if !t.abandoned(current, now) {
			return nil, fmt.Errorf("%w: account %d endpoint %s since %s",
				domain.ErrAttemptInProgress, accountID, endpointID, current.AttemptTime)
		}
		t.logger.Warn("recovering abandoned attempt",
			"account_id", accountID,
			"endpoint", endpointID,
			"started_at", current.AttemptTime,
		)
	}

	attempt := &domain.EndpointStatus{
		AccountID:        accountID,
		EndpointID:       endpointID,
		AttemptTime:      now,
		State:            domain.StateInProgress,
		NextEligibleTime: now.Add(t.config.StaleAfter),
	}
	if err := t.store.Append(ctx, attempt); err != nil {
		return nil, fmt.Errorf("append status: %w", err)
	}
	return attempt, nil
}

// Succeed closes an attempt as UPDATED, eligible again at next.
func (t *Tracker) Succeed(ctx context.Context, attempt *domain.EndpointStatus, at, next time.Time, detail string) (*domain.EndpointStatus, error) {
	return t.finish(ctx, attempt, domain.StateUpdated, at, next, detail)
}

// Fail closes an attempt as SYNC_ERROR. The next eligible time backs off
// exponentially with the number of consecutive failures.
func (t *Tracker) Fail(ctx context.Context, attempt *domain.EndpointStatus, at time.Time, detail string) (*domain.EndpointStatus, error) {
	failures, err := t.consecutiveFailures(ctx, attempt.AccountID, attempt.EndpointID)
	if err != nil {
		return nil, err
	}
	return t.finish(ctx, attempt, domain.StateSyncError, at, at.Add(t.errorBackoff(failures)), detail)
}

// Deny closes an attempt as NOT_ALLOWED. The pair stays denied until Reenable.
func (t *Tracker) Deny(ctx context.Context, attempt *domain.EndpointStatus, at time.Time, detail string) (*domain.EndpointStatus, error) {
	return t.finish(ctx, attempt, domain.StateNotAllowed, at, at.Add(t.config.NotAllowedHold), detail)
}

// Reenable clears a NOT_ALLOWED pair after an external scope change.
func (t *Tracker) Reenable(ctx context.Context, accountID int64, endpointID string, now time.Time) (*domain.EndpointStatus, error) {
	current, err := t.Current(ctx, accountID, endpointID)
	if err != nil {
		return nil, err
	}
	if current.State != domain.StateNotAllowed {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.State, domain.StateNotProcessed)
	}

	row := &domain.EndpointStatus{
		AccountID:        accountID,
		EndpointID:       endpointID,
		AttemptTime:      now,
		State:            domain.StateNotProcessed,
		Detail:           "re-enabled",
		NextEligibleTime: now,
	}
	if err := t.store.Append(ctx, row); err != nil {
		return nil, fmt.Errorf("append status: %w", err)
	}
	return row, nil
}

func (t *Tracker) finish(ctx context.Context, attempt *domain.EndpointStatus, state domain.SyncState, at, next time.Time, detail string) (*domain.EndpointStatus, error) {
	current, err := t.Current(ctx, attempt.AccountID, attempt.EndpointID)
	if err != nil {
		return nil, err
	}
	if current.ID != attempt.ID || !domain.CanTransition(current.State, state) {
		return nil, fmt.Errorf("%w: %s -> %s (attempt %d, latest %d)",
			domain.ErrInvalidTransition, current.State, state, attempt.ID, current.ID)
	}

	row := &domain.EndpointStatus{
		AccountID:        attempt.AccountID,
		EndpointID:       attempt.EndpointID,
		AttemptTime:      at,
		State:            state,
		Detail:           detail,
		NextEligibleTime: next,
	}
	if err := t.store.Append(ctx, row); err != nil {
		return nil, fmt.Errorf("append status: %w", err)
	}
	return row, nil
}

// consecutiveFailures counts SYNC_ERROR rows since the last other outcome.
func (t *Tracker) consecutiveFailures(ctx context.Context, accountID int64, endpointID string) (int, error) {
	rows, err := t.store.History(ctx, accountID, endpointID, historyScan)
	if err != nil {
		return 0, fmt.Errorf("status history: %w", err)
	}

	n := 0
	for _, r := range rows {
		switch r.State {
		case domain.StateInProgress:
			continue
		case domain.StateSyncError:
			n++
		default:
			return n, nil
		}
	}
	return n, nil
}

func (t *Tracker) errorBackoff(previousFailures int) time.Duration {
	backoff := t.config.ErrorBackoff
	for i := 0; i < previousFailures; i++ {
		backoff *= 2
		if backoff >= t.config.MaxErrorBackoff {
			return t.config.MaxErrorBackoff
		}
	}
	return backoff
}
