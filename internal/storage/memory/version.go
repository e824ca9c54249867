// Package memory provides in-process stores with the same semantics as the
// PostgreSQL ones. History lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"account_sync/internal/domain"
)

// VersionStore keeps every version of every key, ordered by ValidFrom.
// All writes for a key happen under one lock, so close-old and insert-new
// are observed together.
type VersionStore struct {
	mu       sync.RWMutex
	versions map[domain.EntityKey][]domain.VersionedEntity
	nextID   int64
}

func NewVersionStore() *VersionStore {
	return &VersionStore{versions: make(map[domain.EntityKey][]domain.VersionedEntity)}
}

func (s *VersionStore) GetOpen(ctx context.Context, key domain.EntityKey) (*domain.VersionedEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.openLocked(key)
	if err != nil || v == nil {
		return nil, err
	}
	out := *v
	return &out, nil
}

func (s *VersionStore) Evolve(ctx context.Context, existing *domain.VersionedEntity, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.openLocked(key)
	if err != nil {
		return false, err
	}
	if err := domain.ExpectOpen(existing, current); err != nil {
		return false, err
	}

	if current == nil {
		if closed := s.lastClosedLocked(key); closed != nil && at.Before(*closed) {
			return false, fmt.Errorf("%w: %s at %s, closed until %s", domain.ErrOutOfOrder, key, at, *closed)
		}
		s.appendLocked(key, attrs, at)
		return true, nil
	}

	if current.Attributes.Equal(attrs) {
		return false, nil
	}
	if !at.After(current.ValidFrom) {
		return false, fmt.Errorf("%w: %s at %s, open since %s", domain.ErrOutOfOrder, key, at, current.ValidFrom)
	}

	closed := at
	current.ValidTo = &closed
	s.appendLocked(key, attrs, at)
	return true, nil
}

func (s *VersionStore) Remove(ctx context.Context, existing domain.VersionedEntity, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := existing.Key()
	current, err := s.openLocked(key)
	if err != nil {
		return err
	}
	if err := domain.ExpectOpen(&existing, current); err != nil {
		return err
	}
	if !at.After(current.ValidFrom) {
		return fmt.Errorf("%w: %s at %s, open since %s", domain.ErrOutOfOrder, key, at, current.ValidFrom)
	}

	closed := at
	current.ValidTo = &closed
	return nil
}

func (s *VersionStore) InsertIfAbsent(ctx context.Context, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.versions[key]) > 0 {
		return false, nil
	}
	s.appendLocked(key, attrs, at)
	return true, nil
}

// RetrieveAllOpen yields the open versions valid at the given time, ordered
// by natural key. Each iteration reads a fresh view.
func (s *VersionStore) RetrieveAllOpen(ctx context.Context, accountID int64, entityType domain.EntityType, at time.Time) iter.Seq2[domain.VersionedEntity, error] {
	return func(yield func(domain.VersionedEntity, error) bool) {
		s.mu.RLock()
		var open []domain.VersionedEntity
		for key, versions := range s.versions {
			if key.AccountID != accountID || key.EntityType != entityType {
				continue
			}
			for _, v := range versions {
				if v.IsOpen() && !v.ValidFrom.After(at) {
					open = append(open, v)
				}
			}
		}
		s.mu.RUnlock()

		slices.SortFunc(open, func(a, b domain.VersionedEntity) int {
			return strings.Compare(string(a.NaturalKey), string(b.NaturalKey))
		})

		for _, v := range open {
			if err := ctx.Err(); err != nil {
				yield(domain.VersionedEntity{}, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

func (s *VersionStore) Snapshot(ctx context.Context, key domain.EntityKey, asOf time.Time) (domain.Attributes, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, v := range s.versions[key] {
		if v.ValidAt(asOf) {
			return append(domain.Attributes(nil), v.Attributes...), true, nil
		}
	}
	return nil, false, nil
}

func (s *VersionStore) History(ctx context.Context, key domain.EntityKey, from, to time.Time) ([]domain.VersionedEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.VersionedEntity
	for _, v := range s.versions[key] {
		if v.Overlaps(from, to) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *VersionStore) openLocked(key domain.EntityKey) (*domain.VersionedEntity, error) {
	versions := s.versions[key]
	var open *domain.VersionedEntity
	for i := range versions {
		if !versions[i].IsOpen() {
			continue
		}
		if open != nil {
			return nil, fmt.Errorf("%w: %s has more than one open version", domain.ErrInvariantViolation, key)
		}
		open = &versions[i]
	}
	return open, nil
}

// lastClosedLocked returns the latest ValidTo of the key's closed versions.
func (s *VersionStore) lastClosedLocked(key domain.EntityKey) *time.Time {
	var last *time.Time
	for _, v := range s.versions[key] {
		if v.ValidTo != nil && (last == nil || v.ValidTo.After(*last)) {
			last = v.ValidTo
		}
	}
	return last
}

func (s *VersionStore) appendLocked(key domain.EntityKey, attrs domain.Attributes, at time.Time) {
	s.nextID++
	s.versions[key] = append(s.versions[key], domain.VersionedEntity{
		ID:         s.nextID,
		AccountID:  key.AccountID,
		EntityType: key.EntityType,
		NaturalKey: key.NaturalKey,
		Attributes: append(domain.Attributes(nil), attrs...),
		ValidFrom:  at,
	})
}
