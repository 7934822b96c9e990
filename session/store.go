package session

import (
	"context"
	"time"
)

// Store owns every Session. Get returns a detached copy; changes become
// visible to other callers only through Save. Concurrent Saves of the
// same id are last-write-wins.
type Store interface {
	// Create installs a fresh session under id, discarding any existing one.
	Create(ctx context.Context, id string) (*Session, error)
	// Get returns errors.ErrSessionNotFound for unknown ids.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// PurgeStale deletes sessions idle since before cutoff and returns how many went.
	PurgeStale(ctx context.Context, cutoff time.Time) (int, error)
}
