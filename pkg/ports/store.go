package ports

import (
	"context"
	"time"

	"github.com/moviops/movi/pkg/domain"
)

// SessionStore persists conversation sessions. This is what allows the
// confirm/resume protocol to span independent network requests: the
// suspended pipeline snapshot is durable, not an in-process coroutine.
type SessionStore interface {
	// Save persists the session under its ID.
	Save(ctx context.Context, session *domain.Session) error

	// Load retrieves a session by ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Session, error)

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of live sessions.
	List(ctx context.Context) ([]string, error)

	// PurgeExpired removes sessions whose last activity is older than the
	// cutoff, returning how many were dropped. Stores with native TTL may
	// only need to prune their index here.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// UnlockFunc releases a held distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes session access across processes.
type DistributedLocker interface {
	// Lock acquires a lock for key, blocking until acquired or ctx ends.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
