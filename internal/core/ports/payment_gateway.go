package ports

import (
	"context"

	"cleaning/internal/core/domain/model/kernel"
)

// ChargeRequest asks the payer's phone to authorize a payment.
type ChargeRequest struct {
	PhoneNumber string
	Amount      kernel.Money
	Reference   string
	Description string
}

// ChargeResponse is the gateway's acknowledgement of a charge request. Accepted means
// the prompt reached the phone, not that money moved.
type ChargeResponse struct {
	Accepted            bool
	MerchantRequestID   string
	CheckoutRequestID   string
	ResponseCode        string
	ResponseDescription string
	CustomerMessage     string
}

// ChargeState is the outcome of a status query.
type ChargeState int

const (
	ChargeStatePending ChargeState = iota
	ChargeStateSucceeded
	ChargeStateFailed
)

// ChargeStatus is the answer of the gateway to a status query.
type ChargeStatus struct {
	State      ChargeState
	ResultCode string
	ResultDesc string
}

// PaymentGateway is the mobile-money provider.
type PaymentGateway interface {
	RequestCharge(ctx context.Context, req ChargeRequest) (ChargeResponse, error)
	QueryCharge(ctx context.Context, checkoutRequestID string) (ChargeStatus, error)
}
