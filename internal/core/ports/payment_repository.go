package ports

import (
	"context"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
)

// PaymentRepository defines the persistence contract for payment aggregates.
type PaymentRepository interface {
	Add(ctx context.Context, aggregate *payment.Payment) error

	// Update is conditioned on the loaded version like JobRepository.Update.
	Update(ctx context.Context, aggregate *payment.Payment) error

	Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error)

	// GetByCheckoutRequestID locks and returns the payment correlated with a gateway
	// checkout request. Returns errs.ErrObjectNotFound when unknown.
	GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.Payment, error)

	// HasBlockingPayment reports whether the job has a Pending, Processing or Completed payment.
	HasBlockingPayment(ctx context.Context, jobID kernel.UUID) (bool, error)

	// ListActiveBefore returns Pending and Processing payments last updated before the
	// given instant, oldest first.
	ListActiveBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error)
}
