package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"iter"
	"time"

	"account_sync/internal/domain"
)

type AccountStore interface {
	ListActive(ctx context.Context) ([]domain.SyncAccount, error)
	Get(ctx context.Context, id int64) (*domain.SyncAccount, error)
}

// VersionStore is the temporal store: evolve/remove writes plus point-in-time reads.
type VersionStore interface {
	GetOpen(ctx context.Context, key domain.EntityKey) (*domain.VersionedEntity, error)
	Evolve(ctx context.Context, existing *domain.VersionedEntity, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error)
	Remove(ctx context.Context, existing domain.VersionedEntity, at time.Time) error
	InsertIfAbsent(ctx context.Context, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error)
	RetrieveAllOpen(ctx context.Context, accountID int64, entityType domain.EntityType, at time.Time) iter.Seq2[domain.VersionedEntity, error]
	Snapshot(ctx context.Context, key domain.EntityKey, asOf time.Time) (domain.Attributes, bool, error)
	History(ctx context.Context, key domain.EntityKey, from, to time.Time) ([]domain.VersionedEntity, error)
}

type Tracker interface {
	Due(ctx context.Context, accountID int64, endpointID string, now time.Time) (bool, error)
	Begin(ctx context.Context, accountID int64, endpointID string, now time.Time) (*domain.EndpointStatus, error)
	Succeed(ctx context.Context, attempt *domain.EndpointStatus, at, next time.Time, detail string) (*domain.EndpointStatus, error)
	Fail(ctx context.Context, attempt *domain.EndpointStatus, at time.Time, detail string) (*domain.EndpointStatus, error)
	Deny(ctx context.Context, attempt *domain.EndpointStatus, at time.Time, detail string) (*domain.EndpointStatus, error)
}

type StatusReader interface {
	Current(ctx context.Context, accountID int64, endpointID string) (domain.EndpointStatus, error)
	History(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error)
}

// StatusAdmin holds the operator-side status writes.
type StatusAdmin interface {
	Reenable(ctx context.Context, accountID int64, endpointID string, now time.Time) (*domain.EndpointStatus, error)
}

type Throttle interface {
	Acquire(ctx context.Context, endpointID string, accountID int64) error
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.ChangeEvent) error
	Close() error
}
