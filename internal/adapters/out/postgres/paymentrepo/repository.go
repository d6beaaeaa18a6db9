package paymentrepo

import (
	"context"
	"errors"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements ports.PaymentRepository using GORM.
type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) Add(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update writes every column conditioned on the loaded version and bumps it.
func (r *GormPaymentRepository) Update(ctx context.Context, aggregate *payment.Payment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	loaded := dto.Version
	dto.Version = loaded + 1

	result := r.db.WithContext(ctx).Model(&PaymentDTO{}).
		Where("id = ? AND version = ?", dto.ID, loaded).
		Select("*").
		Omit("ID", "CreatedAt").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&PaymentDTO{}).Where("id = ?", dto.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("payment", aggregate.ID().String())
	}
	return errs.NewVersionIsInvalidError("payment")
}

func (r *GormPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx), "payment", id.String(), "id = ?", id.Bytes())
}

// GetByCheckoutRequestID locks the row so concurrent callbacks for one checkout apply once.
func (r *GormPaymentRepository) GetByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*payment.Payment, error) {
	if checkoutRequestID == "" {
		return nil, errs.NewValueIsRequiredError("checkoutRequestID")
	}
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}),
		"checkoutRequestID", checkoutRequestID, "checkout_request_id = ?", checkoutRequestID)
}

func (r *GormPaymentRepository) HasBlockingPayment(ctx context.Context, jobID kernel.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&PaymentDTO{}).
		Where("job_id = ? AND status IN ?", jobID.Bytes(),
			[]int{int(payment.Pending), int(payment.Processing), int(payment.Completed)}).
		Count(&count).Error
	return count > 0, err
}

// ListActiveBefore locks the stale rows it returns and skips rows another transaction holds,
// so a sweep never waits on or overwrites a callback that is settling the same payment.
func (r *GormPaymentRepository) ListActiveBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	var dtos []PaymentDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ? AND updated_at < ?", []int{int(payment.Pending), int(payment.Processing)}, before).
		Order("updated_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	payments := make([]*payment.Payment, 0, len(dtos))
	for _, dto := range dtos {
		p, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (r *GormPaymentRepository) first(db *gorm.DB, param string, id any, query string, args ...any) (*payment.Payment, error) {
	var dto PaymentDTO
	if err := db.Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(param, id)
		}
		return nil, err
	}
	return toDomain(dto)
}
