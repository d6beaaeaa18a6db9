// Package paymentrepo persists payment aggregates with GORM.
package paymentrepo

import (
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"

	"github.com/google/uuid"
)

// PaymentDTO is the row of the payments table. The gateway checkout request id is lifted
// out of the metadata into its own unique column so callbacks can find the row by index.
type PaymentDTO struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey"`
	JobID             uuid.UUID         `gorm:"type:uuid;not null;index"`
	PayerID           uuid.UUID         `gorm:"type:uuid;not null"`
	Amount            int64             `gorm:"not null"`
	Currency          string            `gorm:"type:varchar(3);not null"`
	PhoneNumber       string            `gorm:"type:varchar(12);not null"`
	Reference         string            `gorm:"type:varchar(12);not null;uniqueIndex"`
	Status            int               `gorm:"not null;index:idx_payments_status_updated"`
	ProviderReference *string           `gorm:"type:varchar(64);uniqueIndex"`
	CheckoutRequestID *string           `gorm:"type:varchar(64);uniqueIndex"`
	Metadata          map[string]string `gorm:"type:text;serializer:json"`
	CreatedAt         time.Time         `gorm:"not null;autoCreateTime:false"`
	UpdatedAt         time.Time         `gorm:"not null;autoUpdateTime:false;index:idx_payments_status_updated"`
	CompletedAt       *time.Time
	Version           int `gorm:"not null"`
}

func (PaymentDTO) TableName() string {
	return "payments"
}

func fromDomain(p *payment.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:                p.ID().Bytes(),
		JobID:             p.JobID().Bytes(),
		PayerID:           p.PayerID().Bytes(),
		Amount:            p.Amount().Minor(),
		Currency:          p.Currency(),
		PhoneNumber:       p.PhoneNumber(),
		Reference:         p.Reference(),
		Status:            int(p.Status()),
		ProviderReference: p.ProviderReference(),
		Metadata:          p.Metadata(),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
		CompletedAt:       p.CompletedAt(),
		Version:           p.Version(),
	}
	if checkoutID := p.CheckoutRequestID(); checkoutID != "" {
		dto.CheckoutRequestID = &checkoutID
	}
	return dto
}

func toDomain(dto PaymentDTO) (*payment.Payment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}
	payerID, err := kernel.UUIDFromBytes(dto.PayerID[:])
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewMoney(dto.Amount)
	if err != nil {
		return nil, err
	}

	return payment.RestorePayment(payment.Snapshot{
		ID:                id,
		JobID:             jobID,
		PayerID:           payerID,
		Amount:            amount,
		PhoneNumber:       dto.PhoneNumber,
		Reference:         dto.Reference,
		Status:            payment.Status(dto.Status),
		ProviderReference: dto.ProviderReference,
		Metadata:          dto.Metadata,
		CreatedAt:         dto.CreatedAt,
		UpdatedAt:         dto.UpdatedAt,
		CompletedAt:       dto.CompletedAt,
		Version:           dto.Version,
	})
}
