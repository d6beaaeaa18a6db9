package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/guard"
)

var ErrMarkJobPaidCommandIsNotConstructed = errors.New(
	"MarkJobPaidCommand must be created via NewMarkJobPaidCommand constructor",
)

// MarkJobPaidCommand settles a completed job. Marking a paid job again is a no-op.
type MarkJobPaidCommand struct {
	jobID   kernel.UUID
	actorID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkJobPaidCommand(jobID, actorID kernel.UUID) (MarkJobPaidCommand, error) {
	if err := errors.Join(jobID.Validate(), actorID.Validate()); err != nil {
		return MarkJobPaidCommand{}, err
	}
	return MarkJobPaidCommand{jobID: jobID, actorID: actorID, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkJobPaidCommand) Validate() error {
	return c.guard.Validate(ErrMarkJobPaidCommandIsNotConstructed)
}

func (c MarkJobPaidCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c MarkJobPaidCommand) ActorID() kernel.UUID {
	return c.actorID
}
