// Package ports defines the contracts between the application core and its adapters:
// persistence, the tracking session store, the payment gateway and event delivery.
package ports

import (
	"context"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
)

// JobRepository defines the persistence contract for job aggregates and their schedule slots.
type JobRepository interface {
	// Add persists a new job together with its slots.
	Add(ctx context.Context, aggregate *job.Job) error

	// Update persists the job and upserts its slots. The write is conditioned on the
	// version the aggregate was loaded with; a concurrent writer makes it fail with
	// errs.ErrVersionIsInvalid.
	Update(ctx context.Context, aggregate *job.Job) error

	// Get loads a job with its slots. Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error)

	// ListCommitments returns the windows of the cleaner's Scheduled and InProgress jobs.
	ListCommitments(ctx context.Context, cleanerID kernel.UUID) ([]services.Commitment, error)

	// ListPending returns Pending jobs, oldest first.
	ListPending(ctx context.Context, limit, offset int) ([]*job.Job, error)
}
