package memory

import (
	"context"
	"sync"

	"account_sync/internal/domain"
)

type statusKey struct {
	accountID  int64
	endpointID string
}

// StatusStore is an append-only list of status rows per (account, endpoint).
type StatusStore struct {
	mu     sync.RWMutex
	rows   map[statusKey][]domain.EndpointStatus
	nextID int64
}

func NewStatusStore() *StatusStore {
	return &StatusStore{rows: make(map[statusKey][]domain.EndpointStatus)}
}

func (s *StatusStore) Append(ctx context.Context, status *domain.EndpointStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	status.ID = s.nextID
	k := statusKey{status.AccountID, status.EndpointID}
	s.rows[k] = append(s.rows[k], *status)
	return nil
}

func (s *StatusStore) Latest(ctx context.Context, accountID int64, endpointID string) (*domain.EndpointStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.rows[statusKey{accountID, endpointID}]
	if len(rows) == 0 {
		return nil, nil
	}
	latest := rows[len(rows)-1]
	return &latest, nil
}

// History returns up to limit rows, newest first.
func (s *StatusStore) History(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		return nil, nil
	}
	rows := s.rows[statusKey{accountID, endpointID}]
	out := make([]domain.EndpointStatus, 0, min(limit, len(rows)))
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, rows[i])
	}
	return out, nil
}
