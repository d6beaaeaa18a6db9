// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, persistence,
// and best-effort event publishing once the transaction has committed.
package commands

import (
	"context"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// JobRepoFactory provides access to the job repository within a transaction.
	JobRepoFactory interface {
		JobRepository() ports.JobRepository
	}

	// CleanerRepoFactory provides access to the cleaner repository within a transaction.
	CleanerRepoFactory interface {
		CleanerRepository() ports.CleanerRepository
	}

	// PaymentRepoFactory provides access to the payment repository within a transaction.
	PaymentRepoFactory interface {
		PaymentRepository() ports.PaymentRepository
	}

	// JobUoW manages transactions for job-only operations.
	JobUoW interface {
		TxManager
		JobRepoFactory
	}

	// JobUoWFactory creates new job unit of work instances.
	JobUoWFactory interface {
		Create() JobUoW
	}

	// SchedulingUoW manages transactions that assign cleaners: the job row and the
	// cleaner row are locked together.
	SchedulingUoW interface {
		TxManager
		JobRepoFactory
		CleanerRepoFactory
	}

	// SchedulingUoWFactory creates new scheduling unit of work instances.
	SchedulingUoWFactory interface {
		Create() SchedulingUoW
	}

	// PaymentUoW manages transactions across payments and the jobs they settle.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   p, err := uow.PaymentRepository().GetByCheckoutRequestID(ctx, id)
	//   j, err := uow.JobRepository().GetForUpdate(ctx, p.JobID())
	//   // ... settle both
	//
	//   err = uow.Commit(ctx)
	PaymentUoW interface {
		TxManager
		JobRepoFactory
		PaymentRepoFactory
	}

	// PaymentUoWFactory creates new payment unit of work instances.
	PaymentUoWFactory interface {
		Create() PaymentUoW
	}
)

func publishJobEvents(ctx context.Context, publisher ports.EventPublisher, events []job.LifecycleEvent) {
	for _, e := range events {
		publisher.Publish(ctx, e)
	}
}
