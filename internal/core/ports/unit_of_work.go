package ports

import (
	"context"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per command or query.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork binds the job, cleaner and payment repositories to one database
// transaction. Repositories obtained before Begin run outside any transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails when no transaction is open.
	Commit(ctx context.Context) error

	// Rollback fails when no transaction is open. Handlers defer it and drop that error.
	Rollback(ctx context.Context) error

	JobRepository() JobRepository
	CleanerRepository() CleanerRepository
	PaymentRepository() PaymentRepository
}
