package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
	"account_sync/internal/service/mocks"
)

type AdminServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	statuses *mocks.MockStatusAdmin
	service  *AdminService
	now      time.Time
}

func (s *AdminServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.statuses = mocks.NewMockStatusAdmin(s.ctrl)
	s.now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	registry, err := endpoint.NewRegistry(endpoint.Descriptor{
		ID:              "wallet",
		EntityType:      "wallet",
		DefaultInterval: time.Hour,
		Fetch: func(context.Context, domain.SyncAccount) (endpoint.FetchResult, error) {
			return endpoint.FetchResult{}, nil
		},
		Map: func([]byte) ([]endpoint.Candidate, error) { return nil, nil },
	})
	s.Require().NoError(err)

	s.service = NewAdminService(s.statuses, registry)
	s.service.now = func() time.Time { return s.now }
}

func (s *AdminServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}

func (s *AdminServiceTestSuite) TestReenable() {
	ctx := context.Background()
	s.statuses.EXPECT().Reenable(ctx, int64(1), "wallet", s.now).
		Return(&domain.EndpointStatus{State: domain.StateNotProcessed}, nil)

	status, err := s.service.Reenable(ctx, 1, "wallet")
	s.NoError(err)
	s.Equal(domain.StateNotProcessed, status.State)
}

func (s *AdminServiceTestSuite) TestReenable_UnknownEndpoint() {
	_, err := s.service.Reenable(context.Background(), 1, "nope")
	s.ErrorIs(err, domain.ErrUnknownEndpoint)
}
