package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvariantViolation is fatal for the key it concerns: two open
	// versions, or a write lock that could not be taken in time.
	ErrInvariantViolation = errors.New("invariant violation")
	ErrStaleVersion       = errors.New("stale version")
	ErrOutOfOrder         = errors.New("write not after current version")
	ErrMalformedPayload   = errors.New("malformed payload")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotAllowed         = errors.New("endpoint not allowed for account")
	ErrAttemptInProgress  = errors.New("attempt already in progress")
	ErrAccountNotFound    = errors.New("account not found")
	ErrUnknownEndpoint    = errors.New("unknown endpoint")
	ErrInvalidRange       = errors.New("invalid time range")
)

type RemoteErrorKind int

const (
	RemoteTransient RemoteErrorKind = iota
	RemotePermanent
)

func (k RemoteErrorKind) String() string {
	if k == RemotePermanent {
		return "permanent"
	}
	return "transient"
}

// RemoteError is a failure reported by the remote API collaborator.
type RemoteError struct {
	Kind       RemoteErrorKind
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote %s error (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("remote %s error: %v", e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func NewTransientError(status int, err error) *RemoteError {
	return &RemoteError{Kind: RemoteTransient, StatusCode: status, Err: err}
}

func NewPermanentError(status int, err error) *RemoteError {
	return &RemoteError{Kind: RemotePermanent, StatusCode: status, Err: err}
}

func IsPermanent(err error) bool {
	var re *RemoteError
	return errors.As(err, &re) && re.Kind == RemotePermanent
}
