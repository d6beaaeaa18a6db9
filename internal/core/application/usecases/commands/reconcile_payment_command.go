package commands

import (
	"errors"
	"maps"
	"strings"

	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrReconcilePaymentCommandIsNotConstructed = errors.New(
	"ReconcilePaymentCommand must be created via NewReconcilePaymentCommand constructor",
)

// ReconcilePaymentCommand carries the gateway's final word on a charge, from its callback
// or from a status poll. ResultCode 0 means the money moved.
type ReconcilePaymentCommand struct {
	checkoutRequestID string
	resultCode        int
	resultDesc        string
	receipt           string
	details           map[string]string

	guard guard.ConstructorGuard
}

func NewReconcilePaymentCommand(
	checkoutRequestID string,
	resultCode int,
	resultDesc, receipt string,
	details map[string]string,
) (ReconcilePaymentCommand, error) {
	checkoutRequestID = strings.TrimSpace(checkoutRequestID)
	if checkoutRequestID == "" {
		return ReconcilePaymentCommand{}, errs.NewValueIsRequiredError("checkoutRequestID")
	}
	return ReconcilePaymentCommand{
		checkoutRequestID: checkoutRequestID,
		resultCode:        resultCode,
		resultDesc:        strings.TrimSpace(resultDesc),
		receipt:           strings.TrimSpace(receipt),
		details:           maps.Clone(details),
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c ReconcilePaymentCommand) Validate() error {
	return c.guard.Validate(ErrReconcilePaymentCommandIsNotConstructed)
}

func (c ReconcilePaymentCommand) CheckoutRequestID() string {
	return c.checkoutRequestID
}

func (c ReconcilePaymentCommand) ResultCode() int {
	return c.resultCode
}

func (c ReconcilePaymentCommand) ResultDesc() string {
	return c.resultDesc
}

func (c ReconcilePaymentCommand) Receipt() string {
	return c.receipt
}

func (c ReconcilePaymentCommand) Succeeded() bool {
	return c.resultCode == 0
}

func (c ReconcilePaymentCommand) Details() map[string]string {
	return maps.Clone(c.details)
}
