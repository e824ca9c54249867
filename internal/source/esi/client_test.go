package esi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"account_sync/internal/domain"
)

type staticTokens string

func (t staticTokens) Token(context.Context, domain.SyncAccount) (string, error) {
	return string(t), nil
}

type ClientTestSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	client  *Client
	account domain.SyncAccount
}

func (s *ClientTestSuite) SetupTest() {
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handler(w, r)
	}))
	s.account = domain.SyncAccount{ID: 90000001, CredentialRef: "TOKEN"}
	s.client = s.newClient(BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureRatio: 1, MinRequests: 100})
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) newClient(breaker BreakerConfig) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{
		BaseURL:   s.server.URL + "/",
		UserAgent: "AccountSyncTest/1.0",
		Timeout:   5 * time.Second,
		Breaker:   breaker,
	}, staticTokens("secret"), logger)
}

func (s *ClientTestSuite) TestGet_Success() {
	expires := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/characters/90000001/wallet/", r.URL.Path)
		s.Equal("Bearer secret", r.Header.Get("Authorization"))
		s.Equal("AccountSyncTest/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Expires", expires.Format(http.TimeFormat))
		_, _ = w.Write([]byte(`150.25`))
	}

	res, err := s.client.Get(context.Background(), s.account, "/characters/90000001/wallet/")
	s.Require().NoError(err)
	s.Equal(`150.25`, string(res.Payload))
	s.Require().NotNil(res.Expires)
	s.True(res.Expires.Equal(expires))
}

func (s *ClientTestSuite) TestGet_InvalidExpiresIgnored() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Expires", "soon")
		_, _ = w.Write([]byte(`[]`))
	}

	res, err := s.client.Get(context.Background(), s.account, "/x/")
	s.Require().NoError(err)
	s.Nil(res.Expires)
}

func (s *ClientTestSuite) TestGet_PermanentStatuses() {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusBadRequest} {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"token is not valid for scope"}`))
		}

		_, err := s.client.Get(context.Background(), s.account, "/x/")
		s.Require().Error(err)
		s.True(domain.IsPermanent(err), "status %d", code)
		s.Contains(err.Error(), "token is not valid for scope")
	}
}

func (s *ClientTestSuite) TestGet_TransientStatuses() {
	for _, code := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout} {
		s.handler = func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}

		_, err := s.client.Get(context.Background(), s.account, "/x/")
		s.Require().Error(err)
		s.False(domain.IsPermanent(err), "status %d", code)

		var re *domain.RemoteError
		s.Require().True(errors.As(err, &re))
		s.Equal(code, re.StatusCode)
	}
}

func (s *ClientTestSuite) TestGet_RateLimitedCarriesRetryAfter() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}

	_, err := s.client.Get(context.Background(), s.account, "/x/")

	var re *domain.RemoteError
	s.Require().True(errors.As(err, &re))
	s.Equal(domain.RemoteTransient, re.Kind)
	s.Equal(7*time.Second, re.RetryAfter)
}

func (s *ClientTestSuite) TestGet_ErrorLimited() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Esi-Error-Limit-Reset", "30")
		w.WriteHeader(420)
	}

	_, err := s.client.Get(context.Background(), s.account, "/x/")

	var re *domain.RemoteError
	s.Require().True(errors.As(err, &re))
	s.Equal(domain.RemoteTransient, re.Kind)
	s.Equal(30*time.Second, re.RetryAfter)
}

func (s *ClientTestSuite) TestGet_ConcatenatesPages() {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Pages", "3")
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`[1,2]`))
		case "2":
			_, _ = w.Write([]byte(`[3]`))
		case "3":
			_, _ = w.Write([]byte(`[4,5]`))
		}
	}

	res, err := s.client.Get(context.Background(), s.account, "/characters/1/assets/")
	s.Require().NoError(err)
	s.JSONEq(`[1,2,3,4,5]`, string(res.Payload))
}

func (s *ClientTestSuite) TestGet_MissingTokenIsPermanent() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := New(Config{BaseURL: s.server.URL}, EnvTokenProvider{}, logger)

	_, err := client.Get(context.Background(), domain.SyncAccount{ID: 1, CredentialRef: "ACCOUNT_SYNC_TEST_UNSET_TOKEN"}, "/x/")
	s.True(domain.IsPermanent(err))
}

func (s *ClientTestSuite) TestBreaker_OpensOnTransientOnly() {
	var calls atomic.Int32
	client := s.newClient(BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 2})

	s.handler = func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}
	for range 3 {
		_, err := client.Get(context.Background(), s.account, "/x/")
		s.True(domain.IsPermanent(err))
	}
	s.Equal(int32(3), calls.Load())

	s.handler = func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}
	for range 3 {
		_, _ = client.Get(context.Background(), s.account, "/x/")
	}

	// The breaker is open now, so the request never reaches the server.
	before := calls.Load()
	_, err := client.Get(context.Background(), s.account, "/x/")
	s.Require().Error(err)
	s.False(domain.IsPermanent(err))
	s.Equal(before, calls.Load())
}

func TestEnvTokenProvider(t *testing.T) {
	t.Setenv("ACCOUNT_SYNC_TEST_TOKEN", "abc")

	token, err := EnvTokenProvider{}.Token(context.Background(), domain.SyncAccount{CredentialRef: "ACCOUNT_SYNC_TEST_TOKEN"})
	if err != nil || token != "abc" {
		t.Fatalf("token = %q, err = %v", token, err)
	}

	if _, err := (EnvTokenProvider{}).Token(context.Background(), domain.SyncAccount{}); err == nil {
		t.Fatal("expected error for empty credential reference")
	}
}
