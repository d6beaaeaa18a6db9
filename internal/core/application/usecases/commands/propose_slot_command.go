package commands

import (
	"errors"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrProposeSlotCommandIsNotConstructed = errors.New(
	"ProposeSlotCommand must be created via NewProposeSlotCommand constructor",
)

// ProposeSlotCommand offers a time window for a job, either by its client or by a cleaner.
type ProposeSlotCommand struct { //nolint:recvcheck //using for validation
	jobID             kernel.UUID
	slotID            kernel.UUID
	proposerID        kernel.UUID
	window            kernel.TimeWindow
	proposedByCleaner bool

	guard guard.ConstructorGuard
}

func NewProposeSlotCommand(
	jobID, slotID, proposerID kernel.UUID,
	start, end time.Time,
	proposedByCleaner bool,
) (ProposeSlotCommand, error) {
	window, windowErr := kernel.NewTimeWindow(start, end)
	if err := errors.Join(jobID.Validate(), slotID.Validate(), proposerID.Validate(), windowErr); err != nil {
		return ProposeSlotCommand{}, err
	}

	return ProposeSlotCommand{
		jobID:             jobID,
		slotID:            slotID,
		proposerID:        proposerID,
		window:            window,
		proposedByCleaner: proposedByCleaner,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (c ProposeSlotCommand) Validate() error {
	return c.guard.Validate(ErrProposeSlotCommandIsNotConstructed)
}

func (c ProposeSlotCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c ProposeSlotCommand) SlotID() kernel.UUID {
	return c.slotID
}

func (c ProposeSlotCommand) ProposerID() kernel.UUID {
	return c.proposerID
}

func (c ProposeSlotCommand) Window() kernel.TimeWindow {
	return c.window
}

func (c ProposeSlotCommand) ProposedByCleaner() bool {
	return c.proposedByCleaner
}
