package main

import (
	"time"

	"account_sync/internal/config"
	"account_sync/internal/domain"
	"account_sync/internal/endpoint"
)

// applyOverrides drops disabled endpoints and applies configured intervals.
// Descriptors without an interval fall back to fallback.
func applyOverrides(descriptors []endpoint.Descriptor, overrides map[string]config.EndpointConfig, fallback time.Duration) []endpoint.Descriptor {
	out := make([]endpoint.Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		o, ok := overrides[d.ID]
		if ok && !o.IsEnabled() {
			continue
		}
		if ok {
			if o.DefaultInterval > 0 {
				d.DefaultInterval = o.DefaultInterval
			}
			if o.MinInterval > 0 {
				d.MinInterval = o.MinInterval
			}
			if o.PerAccount != nil {
				d.ThrottleScope = endpoint.ScopeEndpoint
				if *o.PerAccount {
					d.ThrottleScope = endpoint.ScopeAccount
				}
			}
		}
		if d.DefaultInterval <= 0 {
			d.DefaultInterval = fallback
		}
		out = append(out, d)
	}
	return out
}

func configuredAccounts(accounts []config.AccountConfig) []domain.SyncAccount {
	out := make([]domain.SyncAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, domain.SyncAccount{
			ID:            a.ID,
			Name:          a.Name,
			CredentialRef: a.CredentialRef,
			Active:        a.IsActive(),
		})
	}
	return out
}
