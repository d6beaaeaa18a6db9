package commands

import (
	"errors"
	"strings"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

// MaxCancelReasonLength bounds the free-text cancellation reason.
const MaxCancelReasonLength = 500

var ErrCancelJobCommandIsNotConstructed = errors.New(
	"CancelJobCommand must be created via NewCancelJobCommand constructor",
)

// CancelJobCommand withdraws a job on behalf of its client or its assigned cleaner.
type CancelJobCommand struct {
	jobID    kernel.UUID
	actorID  kernel.UUID
	isClient bool
	reason   string

	guard guard.ConstructorGuard
}

func NewCancelJobCommand(jobID, actorID kernel.UUID, isClient bool, reason string) (CancelJobCommand, error) {
	reason = strings.TrimSpace(reason)
	err := errors.Join(jobID.Validate(), actorID.Validate())
	if len(reason) > MaxCancelReasonLength {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("reason length", len(reason), 0, MaxCancelReasonLength))
	}
	if err != nil {
		return CancelJobCommand{}, err
	}
	return CancelJobCommand{
		jobID:    jobID,
		actorID:  actorID,
		isClient: isClient,
		reason:   reason,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c CancelJobCommand) Validate() error {
	return c.guard.Validate(ErrCancelJobCommandIsNotConstructed)
}

func (c CancelJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CancelJobCommand) ActorID() kernel.UUID {
	return c.actorID
}

func (c CancelJobCommand) IsClient() bool {
	return c.isClient
}

func (c CancelJobCommand) Reason() string {
	return c.reason
}
