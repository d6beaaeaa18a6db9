package commands

import (
	"errors"
	"time"

	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrPollPaymentsCommandIsNotConstructed = errors.New(
	"PollPaymentsCommand must be created via NewPollPaymentsCommand constructor",
)

// PollPaymentsCommand queries the gateway for Processing payments whose callback has not
// arrived within olderThan.
type PollPaymentsCommand struct {
	olderThan time.Duration
	limit     int

	guard guard.ConstructorGuard
}

func NewPollPaymentsCommand(olderThan time.Duration, limit int) (PollPaymentsCommand, error) {
	if olderThan < 0 {
		return PollPaymentsCommand{}, errs.NewValueIsOutOfRangeError("olderThan", olderThan, 0, "unbounded")
	}
	if limit <= 0 {
		return PollPaymentsCommand{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	return PollPaymentsCommand{olderThan: olderThan, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (c PollPaymentsCommand) Validate() error {
	return c.guard.Validate(ErrPollPaymentsCommandIsNotConstructed)
}

func (c PollPaymentsCommand) OlderThan() time.Duration {
	return c.olderThan
}

func (c PollPaymentsCommand) Limit() int {
	return c.limit
}
