package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/jmoiron/sqlx"

	"account_sync/internal/domain"
)

const versionColumns = `id, account_id, entity_type, natural_key, valid_from, valid_to, attributes`

// VersionStore is the temporal store over the entity_version table. Each
// write runs in one transaction holding a per-key advisory lock, so closing
// the old version and inserting the new one are observed together.
type VersionStore struct {
	db          *sqlx.DB
	tx          *TransactionManager
	lockTimeout time.Duration
}

func NewVersionStore(db *sqlx.DB, lockTimeout time.Duration) *VersionStore {
	return &VersionStore{
		db:          db,
		tx:          NewTransactionManager(db),
		lockTimeout: lockTimeout,
	}
}

func (s *VersionStore) GetOpen(ctx context.Context, key domain.EntityKey) (*domain.VersionedEntity, error) {
	return s.getOpen(ctx, GetExecutor(ctx, s.db), key)
}

func (s *VersionStore) Evolve(ctx context.Context, existing *domain.VersionedEntity, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error) {
	changed := false

	err := s.withKeyLock(ctx, key, func(txCtx context.Context, exec sqlx.ExtContext) error {
		current, err := s.getOpen(txCtx, exec, key)
		if err != nil {
			return err
		}
		if err := domain.ExpectOpen(existing, current); err != nil {
			return err
		}

		if current == nil {
			closed, err := s.lastClosed(txCtx, exec, key)
			if err != nil {
				return err
			}
			if closed != nil && at.Before(*closed) {
				return fmt.Errorf("%w: %s at %s, closed until %s", domain.ErrOutOfOrder, key, at, *closed)
			}
			changed = true
			return s.insert(txCtx, exec, key, attrs, at)
		}

		if current.Attributes.Equal(attrs) {
			return nil
		}
		if !at.After(current.ValidFrom) {
			return fmt.Errorf("%w: %s at %s, open since %s", domain.ErrOutOfOrder, key, at, current.ValidFrom)
		}

		if err := s.close(txCtx, exec, current.ID, at); err != nil {
			return err
		}
		changed = true
		return s.insert(txCtx, exec, key, attrs, at)
	})
	if err != nil {
		return false, translate(err, key)
	}

	return changed, nil
}

func (s *VersionStore) Remove(ctx context.Context, existing domain.VersionedEntity, at time.Time) error {
	key := existing.Key()

	err := s.withKeyLock(ctx, key, func(txCtx context.Context, exec sqlx.ExtContext) error {
		current, err := s.getOpen(txCtx, exec, key)
		if err != nil {
			return err
		}
		if err := domain.ExpectOpen(&existing, current); err != nil {
			return err
		}
		if !at.After(current.ValidFrom) {
			return fmt.Errorf("%w: %s at %s, open since %s", domain.ErrOutOfOrder, key, at, current.ValidFrom)
		}
		return s.close(txCtx, exec, current.ID, at)
	})
	return translate(err, key)
}

func (s *VersionStore) InsertIfAbsent(ctx context.Context, key domain.EntityKey, attrs domain.Attributes, at time.Time) (bool, error) {
	inserted := false

	err := s.withKeyLock(ctx, key, func(txCtx context.Context, exec sqlx.ExtContext) error {
		var exists bool
		query := `
			SELECT EXISTS (
				SELECT 1 FROM entity_version
				WHERE account_id = $1 AND entity_type = $2 AND natural_key = $3
			)`
		if err := sqlx.GetContext(txCtx, exec, &exists, query, key.AccountID, key.EntityType, key.NaturalKey); err != nil {
			return fmt.Errorf("check existing version: %w", err)
		}
		if exists {
			return nil
		}

		inserted = true
		return s.insert(txCtx, exec, key, attrs, at)
	})
	if err != nil {
		return false, translate(err, key)
	}

	return inserted, nil
}

// RetrieveAllOpen streams the open versions valid at the given time, ordered
// by natural key. Every iteration runs the query again.
func (s *VersionStore) RetrieveAllOpen(ctx context.Context, accountID int64, entityType domain.EntityType, at time.Time) iter.Seq2[domain.VersionedEntity, error] {
	query := `
		SELECT ` + versionColumns + `
		FROM entity_version
		WHERE account_id = $1 AND entity_type = $2 AND valid_to IS NULL AND valid_from <= $3
		ORDER BY natural_key`

	return func(yield func(domain.VersionedEntity, error) bool) {
		rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx, query, accountID, entityType, at)
		if err != nil {
			yield(domain.VersionedEntity{}, fmt.Errorf("query open versions: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var v domain.VersionedEntity
			if err := rows.StructScan(&v); err != nil {
				yield(domain.VersionedEntity{}, fmt.Errorf("scan version: %w", err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(domain.VersionedEntity{}, err)
		}
	}
}

func (s *VersionStore) Snapshot(ctx context.Context, key domain.EntityKey, asOf time.Time) (domain.Attributes, bool, error) {
	query := `
		SELECT attributes
		FROM entity_version
		WHERE account_id = $1 AND entity_type = $2 AND natural_key = $3
		  AND valid_from <= $4 AND (valid_to IS NULL OR valid_to > $4)`

	var attrs domain.Attributes
	err := s.db.GetContext(ctx, &attrs, query, key.AccountID, key.EntityType, key.NaturalKey, asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return attrs, true, nil
}

func (s *VersionStore) History(ctx context.Context, key domain.EntityKey, from, to time.Time) ([]domain.VersionedEntity, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM entity_version
		WHERE account_id = $1 AND entity_type = $2 AND natural_key = $3
		  AND valid_from < $5 AND (valid_to IS NULL OR valid_to > $4)
		ORDER BY valid_from`

	var versions []domain.VersionedEntity
	err := s.db.SelectContext(ctx, &versions, query, key.AccountID, key.EntityType, key.NaturalKey, from, to)
	return versions, err
}

// withKeyLock runs fn in a transaction that holds the advisory lock for key.
// Waiting longer than the lock timeout fails with lock_not_available.
func (s *VersionStore) withKeyLock(ctx context.Context, key domain.EntityKey, fn func(ctx context.Context, exec sqlx.ExtContext) error) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, s.db)

		if s.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if _, err := exec.ExecContext(txCtx, stmt); err != nil {
				return fmt.Errorf("set lock timeout: %w", err)
			}
		}

		if _, err := exec.ExecContext(txCtx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}

		return fn(txCtx, exec)
	})
}

// getOpen reads at most two rows so a broken invariant is reported rather
// than hidden behind an arbitrary pick.
func (s *VersionStore) getOpen(ctx context.Context, exec sqlx.ExtContext, key domain.EntityKey) (*domain.VersionedEntity, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM entity_version
		WHERE account_id = $1 AND entity_type = $2 AND natural_key = $3 AND valid_to IS NULL
		LIMIT 2`

	var open []domain.VersionedEntity
	if err := sqlx.SelectContext(ctx, exec, &open, query, key.AccountID, key.EntityType, key.NaturalKey); err != nil {
		return nil, fmt.Errorf("get open version: %w", err)
	}

	switch len(open) {
	case 0:
		return nil, nil
	case 1:
		return &open[0], nil
	default:
		return nil, fmt.Errorf("%w: %s has more than one open version", domain.ErrInvariantViolation, key)
	}
}

// lastClosed returns the latest valid_to of the key's closed versions.
func (s *VersionStore) lastClosed(ctx context.Context, exec sqlx.ExtContext, key domain.EntityKey) (*time.Time, error) {
	query := `
		SELECT MAX(valid_to)
		FROM entity_version
		WHERE account_id = $1 AND entity_type = $2 AND natural_key = $3 AND valid_to IS NOT NULL`

	var closed sql.NullTime
	if err := sqlx.GetContext(ctx, exec, &closed, query, key.AccountID, key.EntityType, key.NaturalKey); err != nil {
		return nil, fmt.Errorf("get last closed version: %w", err)
	}
	if !closed.Valid {
		return nil, nil
	}
	return &closed.Time, nil
}

func (s *VersionStore) insert(ctx context.Context, exec sqlx.ExtContext, key domain.EntityKey, attrs domain.Attributes, at time.Time) error {
	query := `
		INSERT INTO entity_version (account_id, entity_type, natural_key, valid_from, valid_to, attributes)
		VALUES ($1, $2, $3, $4, NULL, $5)`

	if _, err := exec.ExecContext(ctx, query, key.AccountID, key.EntityType, key.NaturalKey, at, attrs); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func (s *VersionStore) close(ctx context.Context, exec sqlx.ExtContext, id int64, at time.Time) error {
	res, err := exec.ExecContext(ctx,
		`UPDATE entity_version SET valid_to = $1 WHERE id = $2 AND valid_to IS NULL`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("close version: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return fmt.Errorf("%w: version %d was not open", domain.ErrStaleVersion, id)
	}
	return nil
}
