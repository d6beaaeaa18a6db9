package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrStopTrackingCommandIsNotConstructed = errors.New(
	"StopTrackingCommand must be created via NewStopTrackingCommand constructor",
)

// StopTrackingCommand ends a session and completes its job with the tracked minutes.
type StopTrackingCommand struct {
	jobID     kernel.UUID
	cleanerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewStopTrackingCommand(jobID, cleanerID kernel.UUID) (StopTrackingCommand, error) {
	if err := errors.Join(jobID.Validate(), cleanerID.Validate()); err != nil {
		return StopTrackingCommand{}, err
	}
	return StopTrackingCommand{jobID: jobID, cleanerID: cleanerID, guard: guard.NewConstructorGuard()}, nil
}

func (c StopTrackingCommand) Validate() error {
	return c.guard.Validate(ErrStopTrackingCommandIsNotConstructed)
}

func (c StopTrackingCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c StopTrackingCommand) CleanerID() kernel.UUID {
	return c.cleanerID
}
