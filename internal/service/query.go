package service

import (
	"context"
	"fmt"
	"time"

	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
)

// QueryService answers point-in-time, history and status questions for callers of the engine.
type QueryService struct {
	versions VersionStore
	statuses StatusReader
	registry *endpoint.Registry
}

func NewQueryService(versions VersionStore, statuses StatusReader, registry *endpoint.Registry) *QueryService {
	return &QueryService{
		versions: versions,
		statuses: statuses,
		registry: registry,
	}
}

// PointInTime returns the attributes valid at asOf.
func (q *QueryService) PointInTime(ctx context.Context, key domain.EntityKey, asOf time.Time) (domain.Attributes, bool, error) {
	attrs, ok, err := q.versions.Snapshot(ctx, key, asOf)
	if err != nil {
		return nil, false, fmt.Errorf("snapshot %s: %w", key, err)
	}
	return attrs, ok, nil
}

// History returns the versions of key intersecting [from, to), oldest first.
func (q *QueryService) History(ctx context.Context, key domain.EntityKey, from, to time.Time) ([]domain.VersionedEntity, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("%w: from %s is not before to %s", domain.ErrInvalidRange, from, to)
	}
	versions, err := q.versions.History(ctx, key, from, to)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", key, err)
	}
	return versions, nil
}

// Current returns every open version of an entity type for an account at asOf.
func (q *QueryService) Current(ctx context.Context, accountID int64, entityType domain.EntityType, asOf time.Time) ([]domain.VersionedEntity, error) {
	var out []domain.VersionedEntity
	for v, err := range q.versions.RetrieveAllOpen(ctx, accountID, entityType, asOf) {
		if err != nil {
			return nil, fmt.Errorf("retrieve open %s: %w", entityType, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func (q *QueryService) Status(ctx context.Context, accountID int64, endpointID string) (domain.EndpointStatus, error) {
	if err := knownEndpoint(q.registry, endpointID); err != nil {
		return domain.EndpointStatus{}, err
	}
	return q.statuses.Current(ctx, accountID, endpointID)
}

func (q *QueryService) StatusHistory(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error) {
	if err := knownEndpoint(q.registry, endpointID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return q.statuses.History(ctx, accountID, endpointID, limit)
}

func knownEndpoint(registry *endpoint.Registry, endpointID string) error {
	if _, ok := registry.Get(endpointID); !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownEndpoint, endpointID)
	}
	return nil
}
