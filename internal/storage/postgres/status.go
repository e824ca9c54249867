package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"account_sync/internal/domain"
)

const statusColumns = `id, account_id, endpoint_id, attempt_time, state, detail, next_eligible_time`

// StatusStore appends rows to sync_status. Rows are never updated, so the
// table is the full audit trail of sync health.
type StatusStore struct {
	db *sqlx.DB
}

func NewStatusStore(db *sqlx.DB) *StatusStore {
	return &StatusStore{db: db}
}

func (s *StatusStore) Append(ctx context.Context, status *domain.EndpointStatus) error {
	query := `
		INSERT INTO sync_status (account_id, endpoint_id, attempt_time, state, detail, next_eligible_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	return s.db.QueryRowContext(ctx, query,
		status.AccountID,
		status.EndpointID,
		status.AttemptTime,
		status.State,
		status.Detail,
		status.NextEligibleTime,
	).Scan(&status.ID)
}

func (s *StatusStore) Latest(ctx context.Context, accountID int64, endpointID string) (*domain.EndpointStatus, error) {
	var status domain.EndpointStatus
	query := `
		SELECT ` + statusColumns + `
		FROM sync_status
		WHERE account_id = $1 AND endpoint_id = $2
		ORDER BY id DESC
		LIMIT 1`

	err := s.db.GetContext(ctx, &status, query, accountID, endpointID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// History returns up to limit rows, newest first.
func (s *StatusStore) History(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error) {
	query := `
		SELECT ` + statusColumns + `
		FROM sync_status
		WHERE account_id = $1 AND endpoint_id = $2
		ORDER BY id DESC
		LIMIT $3`

	var rows []domain.EndpointStatus
	err := s.db.SelectContext(ctx, &rows, query, accountID, endpointID, limit)
	return rows, err
}
