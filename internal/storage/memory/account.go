package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"account_sync/internal/domain"
)

type AccountStore struct {
	mu       sync.RWMutex
	accounts map[int64]domain.SyncAccount
}

func NewAccountStore(accounts ...domain.SyncAccount) *AccountStore {
	s := &AccountStore{accounts: make(map[int64]domain.SyncAccount)}
	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return s
}

func (s *AccountStore) ListActive(ctx context.Context) ([]domain.SyncAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.SyncAccount
	for _, a := range s.accounts {
		if a.Active {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.SyncAccount) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *AccountStore) Get(ctx context.Context, id int64) (*domain.SyncAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *AccountStore) UpsertBatch(ctx context.Context, accounts []domain.SyncAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		s.accounts[a.ID] = a
	}
	return nil
}
