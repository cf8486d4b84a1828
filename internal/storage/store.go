package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a record is missing from storage.
	ErrNotFound = errors.New("storage: record not found")

	// ErrInvalidSession is returned when a session fails validation before a write.
	ErrInvalidSession = errors.New("storage: invalid session")
)

// Store represents the root storage interface.
type Store interface {
	Close() error
	Ping(ctx context.Context) error
	Sessions() SessionStore
}

// SessionStore manages study session records.
// Records are created once and never mutated.
type SessionStore interface {
	// Create assigns an ID and CreatedAt when they are unset and persists the session.
	Create(ctx context.Context, session *StudySession) error
	Get(ctx context.Context, id string) (*StudySession, error)
	// ListByUser returns every session owned by userID, newest first.
	ListByUser(ctx context.Context, userID string) ([]StudySession, error)
}
