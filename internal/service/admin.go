package service

import (
	"context"
	"time"

	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
)

// AdminService carries operator actions that change sync status. It is kept
// apart from QueryService, which never writes.
type AdminService struct {
	statuses StatusAdmin
	registry *endpoint.Registry
	now      func() time.Time
}

func NewAdminService(statuses StatusAdmin, registry *endpoint.Registry) *AdminService {
	return &AdminService{
		statuses: statuses,
		registry: registry,
		now:      time.Now,
	}
}

// Reenable clears a NOT_ALLOWED status after the account's grant changed.
func (a *AdminService) Reenable(ctx context.Context, accountID int64, endpointID string) (*domain.EndpointStatus, error) {
	if err := knownEndpoint(a.registry, endpointID); err != nil {
		return nil, err
	}
	return a.statuses.Reenable(ctx, accountID, endpointID, a.now().UTC().Truncate(time.Microsecond))
}
