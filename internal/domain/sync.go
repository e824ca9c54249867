package domain

import "time"

// CycleStats holds statistics about one orchestrator cycle.
type CycleStats struct {
	Accounts  int           `json:"accounts"`
	Attempted int           `json:"attempted"`
	Updated   int           `json:"updated"`
	Failed    int           `json:"failed"`
	Denied    int           `json:"denied"`
	Skipped   int           `json:"skipped"`
	Inserted  int           `json:"inserted"`
	Evolved   int           `json:"evolved"`
	Removed   int           `json:"removed"`
	Duration  time.Duration `json:"duration_ns"`
}

func (s *CycleStats) Add(other CycleStats) {
	s.Attempted += other.Attempted
	s.Updated += other.Updated
	s.Failed += other.Failed
	s.Denied += other.Denied
	s.Skipped += other.Skipped
	s.Inserted += other.Inserted
	s.Evolved += other.Evolved
	s.Removed += other.Removed
}

// CommitStats counts the writes made by one commit.
type CommitStats struct {
	Inserted  int
	Evolved   int
	Unchanged int
	Removed   int
}

func (s CommitStats) Changed() bool {
	return s.Inserted+s.Evolved+s.Removed > 0
}

// ChangeEvent announces that a commit altered an account's history.
type ChangeEvent struct {
	AccountID   int64      `json:"account_id"`
	EndpointID  string     `json:"endpoint_id"`
	EntityType  EntityType `json:"entity_type"`
	Inserted    int        `json:"inserted"`
	Evolved     int        `json:"evolved"`
	Removed     int        `json:"removed"`
	CommittedAt time.Time  `json:"committed_at"`
}
