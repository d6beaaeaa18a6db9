package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrAcceptSlotCommandIsNotConstructed = errors.New(
	"AcceptSlotCommand must be created via NewAcceptSlotCommand constructor",
)

// AcceptSlotCommand accepts a proposed slot and books a cleaner on it. When cleanerID is
// nil the cleaner who proposed the slot is booked.
type AcceptSlotCommand struct {
	jobID     kernel.UUID
	slotID    kernel.UUID
	clientID  kernel.UUID
	cleanerID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewAcceptSlotCommand(jobID, slotID, clientID kernel.UUID, cleanerID *kernel.UUID) (AcceptSlotCommand, error) {
	err := errors.Join(jobID.Validate(), slotID.Validate(), clientID.Validate())
	if cleanerID != nil {
		err = errors.Join(err, cleanerID.Validate())
	}
	if err != nil {
		return AcceptSlotCommand{}, err
	}
	return AcceptSlotCommand{
		jobID:     jobID,
		slotID:    slotID,
		clientID:  clientID,
		cleanerID: cleanerID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AcceptSlotCommand) Validate() error {
	return c.guard.Validate(ErrAcceptSlotCommandIsNotConstructed)
}

func (c AcceptSlotCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c AcceptSlotCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c AcceptSlotCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c AcceptSlotCommand) CleanerID() *kernel.UUID {
	return c.cleanerID
}
