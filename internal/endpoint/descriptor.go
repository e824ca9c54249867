// Package endpoint defines the declarative contract each remote data category
// implements and the generic commit step that turns a mapped snapshot into
// versioned history.
package endpoint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"account_sync/internal/domain"
)

// DiffMode selects how a snapshot is reconciled with stored history.
type DiffMode int

const (
	// Partial evolves each returned key and leaves absent keys untouched.
	Partial DiffMode = iota
	// FullEnumeration evolves each returned key and closes every open key
	// the snapshot no longer contains.
	FullEnumeration
	// ImmutableInsert records a key the first time it is seen and never
	// compares or evolves it afterwards.
	ImmutableInsert
)

func (m DiffMode) String() string {
	switch m {
	case Partial:
		return "partial"
	case FullEnumeration:
		return "full_enumeration"
	case ImmutableInsert:
		return "immutable_insert"
	default:
		return fmt.Sprintf("DiffMode(%d)", int(m))
	}
}

// ThrottleScope says whether the remote rate limit applies per endpoint or
// per endpoint and account.
type ThrottleScope int

const (
	ScopeEndpoint ThrottleScope = iota
	ScopeAccount
)

// FetchResult is a raw payload with the server supplied cache expiry, if any.
type FetchResult struct {
	Payload []byte
	Expires *time.Time
}

// Candidate is one mapped fact ready for commit.
type Candidate struct {
	Key        domain.NaturalKey
	Attributes domain.Attributes
}

type FetchFunc func(ctx context.Context, account domain.SyncAccount) (FetchResult, error)

type MapFunc func(payload []byte) ([]Candidate, error)

// Descriptor bundles everything the orchestrator needs to sync one category.
type Descriptor struct {
	ID              string
	EntityType      domain.EntityType
	Mode            DiffMode
	DefaultInterval time.Duration
	MinInterval     time.Duration
	ThrottleScope   ThrottleScope
	Fetch           FetchFunc
	Map             MapFunc
}

func (d Descriptor) Validate() error {
	switch {
	case d.ID == "":
		return errors.New("descriptor id is required")
	case d.EntityType == "":
		return fmt.Errorf("descriptor %s: entity type is required", d.ID)
	case d.Fetch == nil:
		return fmt.Errorf("descriptor %s: fetch is required", d.ID)
	case d.Map == nil:
		return fmt.Errorf("descriptor %s: map is required", d.ID)
	case d.DefaultInterval <= 0:
		return fmt.Errorf("descriptor %s: default interval must be positive", d.ID)
	case d.Mode < Partial || d.Mode > ImmutableInsert:
		return fmt.Errorf("descriptor %s: unknown diff mode %d", d.ID, d.Mode)
	}
	return nil
}

// MapPayload maps a raw payload and rejects candidate sets that cannot be
// committed as a whole. Any error wraps domain.ErrMalformedPayload.
func MapPayload(d Descriptor, payload []byte) ([]Candidate, error) {
	candidates, err := d.Map(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedPayload, d.ID, err)
	}

	seen := make(map[domain.NaturalKey]struct{}, len(candidates))
	for _, c := range candidates {
		if c.Key == "" {
			return nil, fmt.Errorf("%w: %s: empty natural key", domain.ErrMalformedPayload, d.ID)
		}
		if _, dup := seen[c.Key]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate natural key %q", domain.ErrMalformedPayload, d.ID, c.Key)
		}
		if len(c.Attributes) == 0 {
			return nil, fmt.Errorf("%w: %s: empty attributes for key %q", domain.ErrMalformedPayload, d.ID, c.Key)
		}
		seen[c.Key] = struct{}{}
	}

	return candidates, nil
}
