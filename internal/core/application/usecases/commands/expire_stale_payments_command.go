package commands

import (
	"errors"
	"time"

	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

// DefaultPaymentExpiry is how long a payment may wait for its outcome before it is failed.
const DefaultPaymentExpiry = 10 * time.Minute

var ErrExpireStalePaymentsCommandIsNotConstructed = errors.New(
	"ExpireStalePaymentsCommand must be created via NewExpireStalePaymentsCommand constructor",
)

// ExpireStalePaymentsCommand fails payments that have been Pending or Processing for longer
// than the window.
type ExpireStalePaymentsCommand struct {
	window time.Duration
	limit  int

	guard guard.ConstructorGuard
}

func NewExpireStalePaymentsCommand(window time.Duration, limit int) (ExpireStalePaymentsCommand, error) {
	if window <= 0 {
		return ExpireStalePaymentsCommand{}, errs.NewValueIsOutOfRangeError("window", window, "1ns", "unbounded")
	}
	if limit <= 0 {
		return ExpireStalePaymentsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return ExpireStalePaymentsCommand{window: window, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c ExpireStalePaymentsCommand) Validate() error {
	return c.guard.Validate(ErrExpireStalePaymentsCommandIsNotConstructed)
}

func (c ExpireStalePaymentsCommand) Window() time.Duration {
	return c.window
}

func (c ExpireStalePaymentsCommand) Limit() int {
	return c.limit
}
