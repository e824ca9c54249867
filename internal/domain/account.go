package domain

import "time"

// SyncAccount is an external player account. Identity and credentials are
// owned elsewhere; CredentialRef is only a handle for the token provider.
type SyncAccount struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	CredentialRef string    `db:"credential_ref"`
	Active        bool      `db:"active"`
	CreatedAt     time.Time `db:"created_at"`
}
