package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrInitiatePaymentCommandIsNotConstructed = errors.New(
	"InitiatePaymentCommand must be created via NewInitiatePaymentCommand constructor",
)

// InitiatePaymentCommand charges the client of a completed job through an STK push.
//
// Example:
//
//	amount, _ := kernel.NewMoney(156000) // KES 1560.00
//	cmd, err := NewInitiatePaymentCommand(kernel.NewUUID(), jobID, clientID, amount, "0712345678")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type InitiatePaymentCommand struct {
	paymentID   kernel.UUID
	jobID       kernel.UUID
	payerID     kernel.UUID
	amount      kernel.Money
	phoneNumber string

	guard guard.ConstructorGuard
}

// NewInitiatePaymentCommand normalizes the phone number to the 2547XXXXXXXX form.
func NewInitiatePaymentCommand(
	paymentID, jobID, payerID kernel.UUID,
	amount kernel.Money,
	phoneNumber string,
) (InitiatePaymentCommand, error) {
	phone, phoneErr := payment.NormalizePhone(phoneNumber)
	err := errors.Join(paymentID.Validate(), jobID.Validate(), payerID.Validate(), phoneErr)
	if amount.IsZero() {
		err = errors.Join(err, errs.NewValueIsRequiredError("amount"))
	}
	if err != nil {
		return InitiatePaymentCommand{}, err
	}
	return InitiatePaymentCommand{
		paymentID:   paymentID,
		jobID:       jobID,
		payerID:     payerID,
		amount:      amount,
		phoneNumber: phone,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (c InitiatePaymentCommand) Validate() error {
	return c.guard.Validate(ErrInitiatePaymentCommandIsNotConstructed)
}

func (c InitiatePaymentCommand) PaymentID() kernel.UUID {
	return c.paymentID
}

func (c InitiatePaymentCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c InitiatePaymentCommand) PayerID() kernel.UUID {
	return c.payerID
}

func (c InitiatePaymentCommand) Amount() kernel.Money {
	return c.amount
}

func (c InitiatePaymentCommand) PhoneNumber() string {
	return c.phoneNumber
}
