package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrResumeTrackingCommandIsNotConstructed = errors.New(
	"ResumeTrackingCommand must be created via NewResumeTrackingCommand constructor",
)

// ResumeTrackingCommand restarts the clock of a paused session.
type ResumeTrackingCommand struct {
	jobID     kernel.UUID
	cleanerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewResumeTrackingCommand(jobID, cleanerID kernel.UUID) (ResumeTrackingCommand, error) {
	if err := errors.Join(jobID.Validate(), cleanerID.Validate()); err != nil {
		return ResumeTrackingCommand{}, err
	}
	return ResumeTrackingCommand{jobID: jobID, cleanerID: cleanerID, guard: guard.NewConstructorGuard()}, nil
}

func (c ResumeTrackingCommand) Validate() error {
	return c.guard.Validate(ErrResumeTrackingCommandIsNotConstructed)
}

func (c ResumeTrackingCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c ResumeTrackingCommand) CleanerID() kernel.UUID {
	return c.cleanerID
}
