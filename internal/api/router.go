// Package api exposes the query side of the engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"account_sync/internal/domain"
)

// Querier answers history and status questions.
type Querier interface {
	PointInTime(ctx context.Context, key domain.EntityKey, asOf time.Time) (domain.Attributes, bool, error)
	History(ctx context.Context, key domain.EntityKey, from, to time.Time) ([]domain.VersionedEntity, error)
	Current(ctx context.Context, accountID int64, entityType domain.EntityType, asOf time.Time) ([]domain.VersionedEntity, error)
	Status(ctx context.Context, accountID int64, endpointID string) (domain.EndpointStatus, error)
	StatusHistory(ctx context.Context, accountID int64, endpointID string, limit int) ([]domain.EndpointStatus, error)
}

// Administrator performs operator actions on sync status.
type Administrator interface {
	Reenable(ctx context.Context, accountID int64, endpointID string) (*domain.EndpointStatus, error)
}

// AccountSyncer runs an on-demand sync of one account.
type AccountSyncer interface {
	SyncAccount(ctx context.Context, accountID int64) (*domain.CycleStats, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	query  Querier
	admin  Administrator
	syncer AccountSyncer
	db     Pinger
	logger *slog.Logger
	now    func() time.Time
}

func NewHandler(query Querier, admin Administrator, syncer AccountSyncer, db Pinger, logger *slog.Logger) *Handler {
	return &Handler{
		query:  query,
		admin:  admin,
		syncer: syncer,
		db:     db,
		logger: logger.With("component", "api"),
		now:    time.Now,
	}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(h.logRequests)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/accounts/{accountID}", func(r chi.Router) {
		r.Post("/sync", h.SyncAccount)

		r.Get("/entities/{entityType}", h.CurrentEntities)
		r.Get("/entities/{entityType}/{key}", h.PointInTime)
		r.Get("/entities/{entityType}/{key}/history", h.History)

		r.Get("/status/{endpoint}", h.Status)
		r.Get("/status/{endpoint}/history", h.StatusHistory)
		r.Post("/endpoints/{endpoint}/reenable", h.Reenable)
	})

	return r
}

const requestIDHeader = "X-Request-ID"

// requestID wraps chi's RequestID so the id is a uuid and is echoed back to
// the caller.
func requestID(next http.Handler) http.Handler {
	chiRequestID := chimiddleware.RequestID(next)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		chiRequestID.ServeHTTP(w, r)
	})
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}
