package endpoint

import (
	"context"
	"fmt"
	"iter"
	"maps"
	"slices"
	"time"

	"account_sync/internal/domain"
)

// Store is the part of the temporal store a commit writes through.
type Store interface {
	GetOpen(ctx context.Context, key domain.EntityKey) (*domain.VersionedEntity, error)
	Evolve(ctx context.Context, existing *domain.VersionedEntity, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error)
	Remove(ctx context.Context, existing domain.VersionedEntity, at time.Time) error
	InsertIfAbsent(ctx context.Context, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error)
	RetrieveAllOpen(ctx context.Context, accountID int64, entityType domain.EntityType, at time.Time) iter.Seq2[domain.VersionedEntity, error]
}

// Commit reconciles candidates with the stored history of one account
// according to the descriptor's diff mode. Every individual write is atomic,
// so a commit interrupted part way leaves valid history behind and the next
// cycle re-derives the rest from a fresh fetch.
func Commit(ctx context.Context, store Store, d Descriptor, accountID int64, candidates []Candidate, at time.Time) (domain.CommitStats, error) {
	switch d.Mode {
	case Partial:
		return commitPartial(ctx, store, d, accountID, candidates, at)
	case FullEnumeration:
		return commitFull(ctx, store, d, accountID, candidates, at)
	case ImmutableInsert:
		return commitImmutable(ctx, store, d, accountID, candidates, at)
	default:
		return domain.CommitStats{}, fmt.Errorf("commit %s: unknown diff mode %s", d.ID, d.Mode)
	}
}

func commitPartial(ctx context.Context, store Store, d Descriptor, accountID int64, candidates []Candidate, at time.Time) (domain.CommitStats, error) {
	var stats domain.CommitStats
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		key := entityKey(d, accountID, c.Key)
		existing, err := store.GetOpen(ctx, key)
		if err != nil {
			return stats, fmt.Errorf("get open %s: %w", key, err)
		}

		if err := evolve(ctx, store, existing, key, c.Attributes, at, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func commitFull(ctx context.Context, store Store, d Descriptor, accountID int64, candidates []Candidate, at time.Time) (domain.CommitStats, error) {
	var stats domain.CommitStats

	open := make(map[domain.NaturalKey]domain.VersionedEntity)
	for v, err := range store.RetrieveAllOpen(ctx, accountID, d.EntityType, at) {
		if err != nil {
			return stats, fmt.Errorf("retrieve open %s: %w", d.EntityType, err)
		}
		open[v.NaturalKey] = v
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		key := entityKey(d, accountID, c.Key)
		var existing *domain.VersionedEntity
		if v, ok := open[c.Key]; ok {
			existing = &v
			delete(open, c.Key)
		}

		if err := evolve(ctx, store, existing, key, c.Attributes, at, &stats); err != nil {
			return stats, err
		}
	}

	// Whatever is still open was not in the enumeration.
	stale := slices.Sorted(maps.Keys(open))
	for _, k := range stale {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		v := open[k]
		if err := store.Remove(ctx, v, at); err != nil {
			return stats, fmt.Errorf("remove %s: %w", v.Key(), err)
		}
		stats.Removed++
	}

	return stats, nil
}

func commitImmutable(ctx context.Context, store Store, d Descriptor, accountID int64, candidates []Candidate, at time.Time) (domain.CommitStats, error) {
	var stats domain.CommitStats
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		key := entityKey(d, accountID, c.Key)
		inserted, err := store.InsertIfAbsent(ctx, key, c.Attributes, at)
		if err != nil {
			return stats, fmt.Errorf("insert %s: %w", key, err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Unchanged++
		}
	}
	return stats, nil
}

func evolve(ctx context.Context, store Store, existing *domain.VersionedEntity, key domain.EntityKey, attrs domain.Attributes, at time.Time, stats *domain.CommitStats) error {
	changed, err := store.Evolve(ctx, existing, key, attrs, at)
	if err != nil {
		return fmt.Errorf("evolve %s: %w", key, err)
	}
	switch {
	case !changed:
		stats.Unchanged++
	case existing == nil:
		stats.Inserted++
	default:
		stats.Evolved++
	}
	return nil
}

func entityKey(d Descriptor, accountID int64, key domain.NaturalKey) domain.EntityKey {
	return domain.EntityKey{AccountID: accountID, EntityType: d.EntityType, NaturalKey: key}
}
