package ports

import (
	"context"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
)

// TrackingStore keeps live tracking sessions in a shared key-value store. Sessions are
// keyed by job, and each active session also holds a lock on its cleaner.
type TrackingStore interface {
	// Create stores a new Running session. It fails with tracking.ErrSessionExists when
	// the job already has one and with tracking.ErrCleanerBusy when the cleaner holds
	// a session for another job. Both checks and the write are atomic.
	Create(ctx context.Context, session *tracking.Session) error

	// Get returns the session of a job or tracking.ErrNoActiveSession.
	Get(ctx context.Context, jobID kernel.UUID) (*tracking.Session, error)

	// Modify loads the session, applies fn and writes the result back, retrying when the
	// session changed concurrently. fn must be safe to call more than once.
	Modify(ctx context.Context, jobID kernel.UUID, fn func(*tracking.Session) error) (*tracking.Session, error)

	// Delete removes the session and releases its cleaner lock. Missing sessions are not an error.
	Delete(ctx context.Context, jobID kernel.UUID) error
}
