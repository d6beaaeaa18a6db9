package payment

import (
	"time"

	"cleaning/internal/core/domain/model/kernel"
)

// SettledEvent is published once, when a payment first reaches Completed or Failed.
type SettledEvent struct {
	PaymentID kernel.UUID
	JobID     kernel.UUID
	PayerID   kernel.UUID
	Amount    kernel.Money
	Status    Status
	Receipt   string
	Reason    string
	SettledAt time.Time
}

func (e SettledEvent) Name() string {
	if e.Status == Completed {
		return "payment.completed"
	}
	return "payment.failed"
}

// NewSettledEvent builds the event from a settled payment.
func NewSettledEvent(p *Payment) SettledEvent {
	var receipt string
	if ref := p.ProviderReference(); ref != nil {
		receipt = *ref
	}
	return SettledEvent{
		PaymentID: p.ID(),
		JobID:     p.JobID(),
		PayerID:   p.PayerID(),
		Amount:    p.Amount(),
		Status:    p.Status(),
		Receipt:   receipt,
		Reason:    p.FailureReason(),
		SettledAt: p.UpdatedAt(),
	}
}
