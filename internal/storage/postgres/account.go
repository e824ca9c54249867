package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"account_sync/internal/domain"
)

type AccountStore struct {
	db *sqlx.DB
}

func NewAccountStore(db *sqlx.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) ListActive(ctx context.Context) ([]domain.SyncAccount, error) {
	query := `
		SELECT id, name, credential_ref, active, created_at
		FROM sync_accounts
		WHERE active
		ORDER BY id`

	var accounts []domain.SyncAccount
	err := s.db.SelectContext(ctx, &accounts, query)
	return accounts, err
}

func (s *AccountStore) Get(ctx context.Context, id int64) (*domain.SyncAccount, error) {
	var account domain.SyncAccount
	query := `SELECT id, name, credential_ref, active, created_at FROM sync_accounts WHERE id = $1`

	err := s.db.GetContext(ctx, &account, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// UpsertBatch registers accounts, refreshing name, credential handle and active flag.
func (s *AccountStore) UpsertBatch(ctx context.Context, accounts []domain.SyncAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO sync_accounts (id, name, credential_ref, active) VALUES ")
	valueArgs := make([]any, 0, len(accounts)*4)

	for i, a := range accounts {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 4
		sb.WriteString("($" + strconv.Itoa(n+1) + ", $" + strconv.Itoa(n+2) + ", $" + strconv.Itoa(n+3) + ", $" + strconv.Itoa(n+4) + ")")
		valueArgs = append(valueArgs, a.ID, a.Name, a.CredentialRef, a.Active)
	}
	sb.WriteString(` ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		credential_ref = EXCLUDED.credential_ref,
		active = EXCLUDED.active`)

	_, err := s.db.ExecContext(ctx, sb.String(), valueArgs...)
	return err
}
