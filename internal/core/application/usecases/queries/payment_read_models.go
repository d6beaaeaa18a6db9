package queries

import (
	"database/sql"
	"encoding/json"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"

	"github.com/google/uuid"
)

// PaymentView is the read model of a payment attempt.
type PaymentView struct {
	ID                kernel.UUID
	JobID             kernel.UUID
	PayerID           kernel.UUID
	Amount            kernel.Money
	Currency          string
	PhoneNumber       string
	Reference         string
	Status            payment.Status
	ProviderReference *string
	CheckoutRequestID *string
	FailureReason     string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

const paymentColumns = `
	id,
	job_id,
	payer_id,
	amount,
	currency,
	phone_number,
	reference,
	status,
	provider_reference,
	checkout_request_id,
	metadata,
	created_at,
	updated_at,
	completed_at`

func collectPayments(rows *sql.Rows) ([]PaymentView, error) {
	defer rows.Close()

	payments := make([]PaymentView, 0)
	for rows.Next() {
		var (
			view     PaymentView
			id       uuid.UUID
			jobID    uuid.UUID
			payerID  uuid.UUID
			amount   int64
			status   int
			metadata sql.NullString
		)
		err := rows.Scan(
			&id,
			&jobID,
			&payerID,
			&amount,
			&view.Currency,
			&view.PhoneNumber,
			&view.Reference,
			&status,
			&view.ProviderReference,
			&view.CheckoutRequestID,
			&metadata,
			&view.CreatedAt,
			&view.UpdatedAt,
			&view.CompletedAt,
		)
		if err != nil {
			return nil, err
		}

		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if view.JobID, err = kernel.UUIDFromBytes(jobID[:]); err != nil {
			return nil, err
		}
		if view.PayerID, err = kernel.UUIDFromBytes(payerID[:]); err != nil {
			return nil, err
		}
		if view.Amount, err = kernel.NewMoney(amount); err != nil {
			return nil, err
		}
		view.Status = payment.Status(status)

		// metadata is written by the repository's JSON serializer
		if metadata.Valid && metadata.String != "" {
			var values map[string]string
			if err = json.Unmarshal([]byte(metadata.String), &values); err != nil {
				return nil, err
			}
			view.FailureReason = values[payment.MetaFailureReason]
		}
		payments = append(payments, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
