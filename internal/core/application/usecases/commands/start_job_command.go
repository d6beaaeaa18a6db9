package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrStartJobCommandIsNotConstructed = errors.New(
	"StartJobCommand must be created via NewStartJobCommand constructor",
)

// StartJobCommand begins work on a scheduled job and opens its tracking session.
type StartJobCommand struct {
	jobID     kernel.UUID
	cleanerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartJobCommand(jobID, cleanerID kernel.UUID) (StartJobCommand, error) {
	if err := errors.Join(jobID.Validate(), cleanerID.Validate()); err != nil {
		return StartJobCommand{}, err
	}
	return StartJobCommand{jobID: jobID, cleanerID: cleanerID, guard: guard.NewConstructorGuard()}, nil
}

func (c StartJobCommand) Validate() error {
	return c.guard.Validate(ErrStartJobCommandIsNotConstructed)
}

func (c StartJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c StartJobCommand) CleanerID() kernel.UUID {
	return c.cleanerID
}
