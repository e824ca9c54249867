package domain

import "time"

// SyncState is the outcome recorded for one (account, endpoint) attempt.
type SyncState string

const (
	StateNotProcessed SyncState = "NOT_PROCESSED"
	StateInProgress   SyncState = "IN_PROGRESS"
	StateUpdated      SyncState = "UPDATED"
	StateSyncError    SyncState = "SYNC_ERROR"
	StateNotAllowed   SyncState = "NOT_ALLOWED"
)

var transitions = map[SyncState][]SyncState{
	StateNotProcessed: {StateInProgress},
	StateInProgress:   {StateUpdated, StateSyncError, StateNotAllowed},
	StateUpdated:      {StateInProgress},
	StateSyncError:    {StateInProgress},
	StateNotAllowed:   {StateNotProcessed},
}

// CanTransition reports whether a status row in state from may be followed by one in state to.
func CanTransition(from, to SyncState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s SyncState) Terminal() bool {
	return s == StateUpdated || s == StateSyncError || s == StateNotAllowed
}

// EndpointStatus is one append-only row of the sync_status audit trail.
type EndpointStatus struct {
	ID               int64     `db:"id" json:"id"`
	AccountID        int64     `db:"account_id" json:"account_id"`
	EndpointID       string    `db:"endpoint_id" json:"endpoint_id"`
	AttemptTime      time.Time `db:"attempt_time" json:"attempt_time"`
	State            SyncState `db:"state" json:"state"`
	Detail           string    `db:"detail" json:"detail"`
	NextEligibleTime time.Time `db:"next_eligible_time" json:"next_eligible_time"`
}

// Eligible reports whether the pair may be polled again at now.
func (s EndpointStatus) Eligible(now time.Time) bool {
	return !now.Before(s.NextEligibleTime)
}
