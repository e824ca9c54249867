package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"account_sync/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

type snapshotResponse struct {
	AccountID  int64             `json:"account_id"`
	EntityType domain.EntityType `json:"entity_type"`
	NaturalKey domain.NaturalKey `json:"natural_key"`
	AsOf       time.Time         `json:"as_of"`
	Attributes domain.Attributes `json:"attributes"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CurrentEntities(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	asOf, ok := h.timeParam(w, r, "as_of", h.now())
	if !ok {
		return
	}

	versions, err := h.query.Current(r.Context(), accountID, domain.EntityType(chi.URLParam(r, "entityType")), asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if versions == nil {
		versions = []domain.VersionedEntity{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handler) PointInTime(w http.ResponseWriter, r *http.Request) {
	key, ok := h.entityKey(w, r)
	if !ok {
		return
	}
	asOf, ok := h.timeParam(w, r, "as_of", h.now())
	if !ok {
		return
	}

	attrs, found, err := h.query.PointInTime(r.Context(), key, asOf)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("no version of %s valid at %s", key, asOf.Format(time.RFC3339Nano))})
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		AccountID:  key.AccountID,
		EntityType: key.EntityType,
		NaturalKey: key.NaturalKey,
		AsOf:       asOf,
		Attributes: attrs,
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	key, ok := h.entityKey(w, r)
	if !ok {
		return
	}
	from, ok := h.timeParam(w, r, "from", time.Unix(0, 0).UTC())
	if !ok {
		return
	}
	to, ok := h.timeParam(w, r, "to", h.now())
	if !ok {
		return
	}

	versions, err := h.query.History(r.Context(), key, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if versions == nil {
		versions = []domain.VersionedEntity{}
	}
	writeJSON(w, http.StatusOK, versions)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	status, err := h.query.Status(r.Context(), accountID, chi.URLParam(r, "endpoint"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	rows, err := h.query.StatusHistory(r.Context(), accountID, chi.URLParam(r, "endpoint"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if rows == nil {
		rows = []domain.EndpointStatus{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) Reenable(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}
	endpointID := chi.URLParam(r, "endpoint")

	status, err := h.admin.Reenable(r.Context(), accountID, endpointID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("endpoint re-enabled", "account_id", accountID, "endpoint", endpointID)
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) SyncAccount(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	stats, err := h.syncer.SyncAccount(r.Context(), accountID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid account id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) entityKey(w http.ResponseWriter, r *http.Request) (domain.EntityKey, bool) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return domain.EntityKey{}, false
	}
	return domain.EntityKey{
		AccountID:  accountID,
		EntityType: domain.EntityType(chi.URLParam(r, "entityType")),
		NaturalKey: domain.NaturalKey(chi.URLParam(r, "key")),
	}, true
}

func (h *Handler) timeParam(w http.ResponseWriter, r *http.Request, name string, def time.Time) (time.Time, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def.UTC(), true
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("%s must be an RFC 3339 timestamp", name)})
		return time.Time{}, false
	}
	return t.UTC(), true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrUnknownEndpoint):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidRange):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidTransition):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
