package postgres

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"account_sync/internal/domain"
)

const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
	openVersionIndex     = "entity_version_open_idx"
	versionKeyConstraint = "entity_version_key"
)

// translate maps PostgreSQL failures that mean the version invariant could
// not be upheld onto domain.ErrInvariantViolation. A second version starting
// at the same instant is an out-of-order write.
func translate(err error, key domain.EntityKey) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch {
	case pqErr.Code == codeLockNotAvailable:
		return fmt.Errorf("%w: write lock for %s not acquired within bound: %v", domain.ErrInvariantViolation, key, err)
	case pqErr.Code == codeUniqueViolation && pqErr.Constraint == openVersionIndex:
		return fmt.Errorf("%w: concurrent open version for %s: %v", domain.ErrInvariantViolation, key, err)
	case pqErr.Code == codeUniqueViolation && pqErr.Constraint == versionKeyConstraint:
		return fmt.Errorf("%w: %s already has a version starting at that time: %v", domain.ErrOutOfOrder, key, err)
	}
	return err
}
