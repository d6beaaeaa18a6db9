package payment

import (
	"errors"
	"fmt"

	"cleaning/internal/pkg/errs"
)

// ErrInvalidPaymentState is matched by every rejected payment transition.
var ErrInvalidPaymentState = errors.New("invalid payment state")

// Status is the settlement state of a payment.
//
// State transitions:
//
//	Pending ──> Processing ──┬──> Completed ──> Refunded
//	   │                     └──> Failed
//	   └──────────────────────────> Failed
type Status int

const (
	Unknown Status = iota
	// Pending payments are recorded but the charge request was not acknowledged yet.
	Pending
	// Processing payments were accepted by the gateway and await the payer's confirmation.
	Processing
	Completed
	Failed
	Refunded
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Processing: "PROCESSING",
		Completed:  "COMPLETED",
		Failed:     "FAILED",
		Refunded:   "REFUNDED",
	}
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

func (s Status) Validate() error {
	if s <= Unknown || s > Refunded {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsActive reports whether the payment still blocks a new charge for the same job.
func (s Status) IsActive() bool {
	return s == Pending || s == Processing
}

// IsTerminal reports whether a gateway result may no longer change the payment.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed || s == Refunded
}

func (s Status) Process() (Status, error) {
	return s.moveTo(Processing, Pending)
}

func (s Status) Complete() (Status, error) {
	return s.moveTo(Completed, Processing)
}

func (s Status) Fail() (Status, error) {
	return s.moveTo(Failed, Pending, Processing)
}

func (s Status) Refund() (Status, error) {
	return s.moveTo(Refunded, Completed)
}

func (s Status) moveTo(next Status, from ...Status) (Status, error) {
	for _, allowed := range from {
		if s == allowed {
			return next, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %w", ErrInvalidPaymentState,
		errs.NewStatusTransitionError("payment", s.String(), next.String()))
}
