package service

import (
	"context"
	"errors"
	"iter"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
	"account_sync/internal/service/mocks"
)

type QueryServiceTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	versions *mocks.MockVersionStore
	statuses *mocks.MockStatusReader
	service  *QueryService
	now      time.Time
}

func (s *QueryServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.versions = mocks.NewMockVersionStore(s.ctrl)
	s.statuses = mocks.NewMockStatusReader(s.ctrl)
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

	s.service = NewQueryService(s.versions, s.statuses, registry)
}

func (s *QueryServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestQueryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceTestSuite))
}

func (s *QueryServiceTestSuite) TestPointInTime() {
	ctx := context.Background()
	key := domain.EntityKey{AccountID: 1, EntityType: "wallet", NaturalKey: domain.SingletonKey}

	s.versions.EXPECT().Snapshot(ctx, key, s.now).Return(domain.Attributes(`{"balance":"1.00"}`), true, nil)

	attrs, ok, err := s.service.PointInTime(ctx, key, s.now)
	s.NoError(err)
	s.True(ok)
	s.JSONEq(`{"balance":"1.00"}`, string(attrs))
}

func (s *QueryServiceTestSuite) TestPointInTime_StoreError() {
	ctx := context.Background()
	key := domain.EntityKey{AccountID: 1, EntityType: "wallet", NaturalKey: domain.SingletonKey}

	s.versions.EXPECT().Snapshot(ctx, key, s.now).Return(nil, false, errors.New("boom"))

	_, _, err := s.service.PointInTime(ctx, key, s.now)
	s.Error(err)
}

func (s *QueryServiceTestSuite) TestHistory_InvalidRange() {
	ctx := context.Background()
	key := domain.EntityKey{AccountID: 1, EntityType: "wallet", NaturalKey: domain.SingletonKey}

	_, err := s.service.History(ctx, key, s.now, s.now)
	s.ErrorIs(err, domain.ErrInvalidRange)
}

func (s *QueryServiceTestSuite) TestHistory() {
	ctx := context.Background()
	key := domain.EntityKey{AccountID: 1, EntityType: "wallet", NaturalKey: domain.SingletonKey}
	from := s.now.Add(-time.Hour)

	s.versions.EXPECT().History(ctx, key, from, s.now).Return([]domain.VersionedEntity{{ID: 1}, {ID: 2}}, nil)

	versions, err := s.service.History(ctx, key, from, s.now)
	s.NoError(err)
	s.Len(versions, 2)
}

func (s *QueryServiceTestSuite) TestCurrent() {
	ctx := context.Background()
	seq := iter.Seq2[domain.VersionedEntity, error](func(yield func(domain.VersionedEntity, error) bool) {
		if !yield(domain.VersionedEntity{NaturalKey: "a"}, nil) {
			return
		}
		yield(domain.VersionedEntity{NaturalKey: "b"}, nil)
	})
	s.versions.EXPECT().RetrieveAllOpen(ctx, int64(1), domain.EntityType("title"), s.now).Return(seq)

	versions, err := s.service.Current(ctx, 1, "title", s.now)
	s.NoError(err)
	s.Len(versions, 2)
}

func (s *QueryServiceTestSuite) TestCurrent_IterationError() {
	ctx := context.Background()
	seq := iter.Seq2[domain.VersionedEntity, error](func(yield func(domain.VersionedEntity, error) bool) {
		yield(domain.VersionedEntity{}, errors.New("scan failed"))
	})
	s.versions.EXPECT().RetrieveAllOpen(ctx, int64(1), domain.EntityType("title"), s.now).Return(seq)

	_, err := s.service.Current(ctx, 1, "title", s.now)
	s.Error(err)
}

func (s *QueryServiceTestSuite) TestStatus_UnknownEndpoint() {
	_, err := s.service.Status(context.Background(), 1, "nope")
	s.ErrorIs(err, domain.ErrUnknownEndpoint)
}

func (s *QueryServiceTestSuite) TestStatus() {
	ctx := context.Background()
	s.statuses.EXPECT().Current(ctx, int64(1), "wallet").Return(domain.EndpointStatus{State: domain.StateUpdated}, nil)

	status, err := s.service.Status(ctx, 1, "wallet")
	s.NoError(err)
	s.Equal(domain.StateUpdated, status.State)
}

func (s *QueryServiceTestSuite) TestStatusHistory_DefaultLimit() {
	ctx := context.Background()
	s.statuses.EXPECT().History(ctx, int64(1), "wallet", 50).Return(nil, nil)

	_, err := s.service.StatusHistory(ctx, 1, "wallet", 0)
	s.NoError(err)
}
