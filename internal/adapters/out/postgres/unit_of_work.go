// Package postgres provides the GORM-based Unit of Work shared by the job, cleaner and
// payment repositories.
//
// A unit of work wraps one database transaction. Repositories obtained from it after
// Begin run inside that transaction, so a command that locks a job row, locks a cleaner
// row and writes both either commits everything or nothing.
//
// Usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	aggregate, err := uow.JobRepository().GetForUpdate(ctx, jobID)
//	if err != nil {
//	    return err
//	}
//	// mutate aggregate
//	if err = uow.JobRepository().Update(ctx, aggregate); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// The deferred Rollback after a successful Commit returns gorm.ErrInvalidTransaction and
// is ignored by callers.
//
// Concurrency:
//   - each UnitOfWork instance owns its transaction; goroutines must not share one
//   - row locks taken with GetForUpdate or Lock are held until Commit or Rollback
//   - writes are version-conditioned, so a writer that skipped the lock still fails
//     with errs.ErrVersionIsInvalid instead of overwriting a newer row
package postgres

import (
	"context"

	"cleaning/internal/adapters/out/postgres/cleanerrepo"
	"cleaning/internal/adapters/out/postgres/jobrepo"
	"cleaning/internal/adapters/out/postgres/paymentrepo"
	"cleaning/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances on a shared connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a fresh unit of work with no open transaction.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// GormUnitOfWork coordinates one database transaction across repositories.
type GormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// Begin opens the transaction. Calling it again while a transaction is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	return nil
}

// Commit makes the transaction's writes permanent and closes it.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction's writes and closes it.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// JobRepository runs inside the open transaction, or directly on the pool when none is open.
func (uow *GormUnitOfWork) JobRepository() ports.JobRepository {
	return jobrepo.NewGormJobRepository(uow.conn())
}

func (uow *GormUnitOfWork) CleanerRepository() ports.CleanerRepository {
	return cleanerrepo.NewGormCleanerRepository(uow.conn())
}

func (uow *GormUnitOfWork) PaymentRepository() ports.PaymentRepository {
	return paymentrepo.NewGormPaymentRepository(uow.conn())
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// Migrate creates or updates the schema of every table owned by the repositories.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&cleanerrepo.CleanerDTO{},
		&jobrepo.JobDTO{},
		&jobrepo.SlotDTO{},
		&paymentrepo.PaymentDTO{},
	)
}
