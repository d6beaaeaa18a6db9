package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrRejectSlotCommandIsNotConstructed = errors.New(
	"RejectSlotCommand must be created via NewRejectSlotCommand constructor",
)

// RejectSlotCommand declines a proposed slot on behalf of the job's client.
type RejectSlotCommand struct {
	jobID    kernel.UUID
	slotID   kernel.UUID
	clientID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRejectSlotCommand(jobID, slotID, clientID kernel.UUID) (RejectSlotCommand, error) {
	if err := errors.Join(jobID.Validate(), slotID.Validate(), clientID.Validate()); err != nil {
		return RejectSlotCommand{}, err
	}
	return RejectSlotCommand{
		jobID:    jobID,
		slotID:   slotID,
		clientID: clientID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c RejectSlotCommand) Validate() error {
	return c.guard.Validate(ErrRejectSlotCommandIsNotConstructed)
}

func (c RejectSlotCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c RejectSlotCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c RejectSlotCommand) ClientID() kernel.UUID {
	return c.clientID
}
