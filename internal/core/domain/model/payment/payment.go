package payment

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

// Provider metadata keys stored alongside a payment for reconciliation.
const (
	MetaCheckoutRequestID = "CheckoutRequestID"
	MetaMerchantRequestID = "MerchantRequestID"
	MetaResultCode        = "ResultCode"
	MetaResultDesc        = "ResultDesc"
	MetaTransactionDate   = "TransactionDate"
	MetaPhoneNumber       = "PhoneNumber"
	MetaFailureReason     = "FailureReason"
)

// FailureReasonExpired marks payments failed by the stale-payment sweep.
const FailureReasonExpired = "expired"

var (
	ErrPaymentIsNotConstructed = errors.New("Payment must be created via NewPayment constructor")
	// ErrPaymentExists is returned when a job already has a payment in flight or settled.
	ErrPaymentExists = fmt.Errorf("%w: job already has an active or completed payment", errs.ErrConflict)
)

// Payment is a charge against exactly one completed job. Its status only moves forward
// through the transitions of Status and it is never deleted.
type Payment struct {
	id                kernel.UUID
	jobID             kernel.UUID
	payerID           kernel.UUID
	amount            kernel.Money
	phoneNumber       string
	reference         string
	status            Status
	providerReference *string
	metadata          map[string]string
	createdAt         time.Time
	updatedAt         time.Time
	completedAt       *time.Time
	version           int
	guard             guard.ConstructorGuard
}

// NewPayment records a Pending charge. The phone number must already be normalized.
func NewPayment(
	id, jobID, payerID kernel.UUID,
	amount kernel.Money,
	phoneNumber, reference string,
	now time.Time,
) (*Payment, error) {
	return RestorePayment(Snapshot{
		ID:          id,
		JobID:       jobID,
		PayerID:     payerID,
		Amount:      amount,
		PhoneNumber: phoneNumber,
		Reference:   reference,
		Status:      Pending,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Snapshot is the persisted state of a Payment.
type Snapshot struct {
	ID                kernel.UUID
	JobID             kernel.UUID
	PayerID           kernel.UUID
	Amount            kernel.Money
	PhoneNumber       string
	Reference         string
	Status            Status
	ProviderReference *string
	Metadata          map[string]string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
	Version           int
}

func RestorePayment(s Snapshot) (*Payment, error) {
	var errList []error
	errList = append(errList, s.ID.Validate(), s.JobID.Validate(), s.Status.Validate())
	if err := s.PayerID.Validate(); err != nil {
		errList = append(errList, errs.NewValueIsRequiredErrorWithCause("payerID", err))
	}
	if s.Amount.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("amount"))
	}
	if _, err := NormalizePhone(s.PhoneNumber); err != nil {
		errList = append(errList, err)
	}
	if len(s.Reference) == 0 || len(s.Reference) > ReferenceLength {
		errList = append(errList, errs.NewValueIsOutOfRangeError("reference length", len(s.Reference), 1, ReferenceLength))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	metadata := make(map[string]string, len(s.Metadata))
	maps.Copy(metadata, s.Metadata)

	return &Payment{
		id:                s.ID,
		jobID:             s.JobID,
		payerID:           s.PayerID,
		amount:            s.Amount,
		phoneNumber:       s.PhoneNumber,
		reference:         s.Reference,
		status:            s.Status,
		providerReference: s.ProviderReference,
		metadata:          metadata,
		createdAt:         s.CreatedAt,
		updatedAt:         s.UpdatedAt,
		completedAt:       s.CompletedAt,
		version:           s.Version,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (p *Payment) Validate() error {
	if p == nil {
		return ErrPaymentIsNotConstructed
	}
	return p.guard.Validate(ErrPaymentIsNotConstructed)
}

func (p *Payment) ID() kernel.UUID {
	return p.id
}

func (p *Payment) JobID() kernel.UUID {
	return p.jobID
}

func (p *Payment) PayerID() kernel.UUID {
	return p.payerID
}

func (p *Payment) Amount() kernel.Money {
	return p.amount
}

func (p *Payment) Currency() string {
	return kernel.Currency
}

func (p *Payment) PhoneNumber() string {
	return p.phoneNumber
}

func (p *Payment) Reference() string {
	return p.reference
}

func (p *Payment) Status() Status {
	return p.status
}

// ProviderReference is the gateway receipt number, set once the payment completes.
func (p *Payment) ProviderReference() *string {
	return p.providerReference
}

// Metadata returns a copy of the provider metadata bag.
func (p *Payment) Metadata() map[string]string {
	out := make(map[string]string, len(p.metadata))
	maps.Copy(out, p.metadata)
	return out
}

// CheckoutRequestID is the gateway correlation id used to match callbacks and polls.
func (p *Payment) CheckoutRequestID() string {
	return p.metadata[MetaCheckoutRequestID]
}

func (p *Payment) FailureReason() string {
	return p.metadata[MetaFailureReason]
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Payment) CompletedAt() *time.Time {
	return p.completedAt
}

func (p *Payment) Version() int {
	return p.version
}

// MarkProcessing stores the gateway's correlation identifiers after an accepted charge request.
func (p *Payment) MarkProcessing(checkoutRequestID, merchantRequestID string, now time.Time) error {
	if strings.TrimSpace(checkoutRequestID) == "" {
		return errs.NewValueIsRequiredError("checkoutRequestID")
	}
	next, err := p.status.Process()
	if err != nil {
		return err
	}
	p.status = next
	p.metadata[MetaCheckoutRequestID] = checkoutRequestID
	if merchantRequestID != "" {
		p.metadata[MetaMerchantRequestID] = merchantRequestID
	}
	p.updatedAt = now
	return nil
}

// Complete settles the payment with the gateway receipt number.
func (p *Payment) Complete(receipt string, details map[string]string, now time.Time) error {
	receipt = strings.TrimSpace(receipt)
	if receipt == "" {
		return errs.NewValueIsRequiredError("receipt")
	}
	next, err := p.status.Complete()
	if err != nil {
		return err
	}
	p.status = next
	p.providerReference = &receipt
	p.mergeMetadata(details)
	p.updatedAt = now
	p.completedAt = &now
	return nil
}

// Fail records the failure reason. Allowed from Pending and Processing.
func (p *Payment) Fail(reason string, details map[string]string, now time.Time) error {
	next, err := p.status.Fail()
	if err != nil {
		return err
	}
	p.status = next
	p.mergeMetadata(details)
	if reason = strings.TrimSpace(reason); reason != "" {
		p.metadata[MetaFailureReason] = reason
	}
	p.updatedAt = now
	return nil
}

// Refund reverses a completed payment.
func (p *Payment) Refund(now time.Time) error {
	next, err := p.status.Refund()
	if err != nil {
		return err
	}
	p.status = next
	p.updatedAt = now
	return nil
}

func (p *Payment) mergeMetadata(details map[string]string) {
	for k, v := range details {
		if v != "" {
			p.metadata[k] = v
		}
	}
}
