package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrAssignCleanerCommandIsNotConstructed = errors.New(
	"AssignCleanerCommand must be created via NewAssignCleanerCommand constructor",
)

// AssignCleanerCommand books a cleaner on a job for its accepted slot.
//
// Example:
//
//	cmd, err := NewAssignCleanerCommand(jobID, cleanerID, slotID, clientID)
//	if err != nil {
//	    return err
//	}
//	switch err := handler.Handle(ctx, cmd); {
//	case errors.Is(err, job.ErrCleanerNotAvailable):
//	    // the cleaner is booked elsewhere over the slot
//	case err != nil:
//	    return err
//	}
type AssignCleanerCommand struct {
	jobID     kernel.UUID
	cleanerID kernel.UUID
	slotID    kernel.UUID
	actorID   kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignCleanerCommand(jobID, cleanerID, slotID, actorID kernel.UUID) (AssignCleanerCommand, error) {
	if err := errors.Join(jobID.Validate(), cleanerID.Validate(), slotID.Validate(), actorID.Validate()); err != nil {
		return AssignCleanerCommand{}, err
	}
	return AssignCleanerCommand{
		jobID:     jobID,
		cleanerID: cleanerID,
		slotID:    slotID,
		actorID:   actorID,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c AssignCleanerCommand) Validate() error {
	return c.guard.Validate(ErrAssignCleanerCommandIsNotConstructed)
}

func (c AssignCleanerCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c AssignCleanerCommand) CleanerID() kernel.UUID {
	return c.cleanerID
}

func (c AssignCleanerCommand) SlotID() kernel.UUID {
	return c.slotID
}

// ActorID is the client on whose behalf the assignment is made.
func (c AssignCleanerCommand) ActorID() kernel.UUID {
	return c.actorID
}
