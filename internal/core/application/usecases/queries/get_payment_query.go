package queries

import (
	"context"
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrGetPaymentQueryIsNotConstructed = errors.New("GetPaymentQuery must be created via NewGetPaymentQuery constructor")

// GetPaymentQuery loads a payment for its payer.
type GetPaymentQuery struct {
	paymentID kernel.UUID
	actorID   kernel.UUID
	guard     guard.ConstructorGuard
}

func NewGetPaymentQuery(paymentID, actorID kernel.UUID) (GetPaymentQuery, error) {
	if err := paymentID.Validate(); err != nil {
		return GetPaymentQuery{}, errs.NewValueIsRequiredErrorWithCause("paymentID", err)
	}
	if err := actorID.Validate(); err != nil {
		return GetPaymentQuery{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	return GetPaymentQuery{paymentID: paymentID, actorID: actorID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetPaymentQuery) Validate() error {
	return q.guard.Validate(ErrGetPaymentQueryIsNotConstructed)
}

type GetPaymentQueryHandler struct {
	db *gorm.DB
}

func NewGetPaymentQueryHandler(db *gorm.DB) GetPaymentQueryHandler {
	return GetPaymentQueryHandler{db: db}
}

func (h GetPaymentQueryHandler) Handle(ctx context.Context, query GetPaymentQuery) (PaymentView, error) {
	if err := query.Validate(); err != nil {
		return PaymentView{}, err
	}

	rows, err := h.db.WithContext(ctx).
		Raw(`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, query.paymentID.Bytes()).
		Rows()
	if err != nil {
		return PaymentView{}, err
	}
	payments, err := collectPayments(rows)
	if err != nil {
		return PaymentView{}, err
	}
	if len(payments) == 0 {
		return PaymentView{}, errs.NewObjectNotFoundError("payment", query.paymentID.String())
	}
	if !payments[0].PayerID.IsEqual(query.actorID) {
		return PaymentView{}, errs.NewNotAuthorizedError(query.actorID.String(), "read this payment")
	}
	return payments[0], nil
}
