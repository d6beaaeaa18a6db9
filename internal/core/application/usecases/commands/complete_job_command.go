package commands

import (
	"errors"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrCompleteJobCommandIsNotConstructed = errors.New(
	"CompleteJobCommand must be created via NewCompleteJobCommand constructor",
)

// CompleteJobCommand closes a job with the minutes actually worked.
type CompleteJobCommand struct {
	jobID         kernel.UUID
	cleanerID     kernel.UUID
	actualMinutes int

	guard guard.ConstructorGuard
}

func NewCompleteJobCommand(jobID, cleanerID kernel.UUID, actualMinutes int) (CompleteJobCommand, error) {
	err := errors.Join(jobID.Validate(), cleanerID.Validate())
	if actualMinutes < 0 || actualMinutes > 2*job.MaxEstimatedMinutes {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("actualMinutes", actualMinutes, 0, 2*job.MaxEstimatedMinutes))
	}
	if err != nil {
		return CompleteJobCommand{}, err
	}
	return CompleteJobCommand{
		jobID:         jobID,
		cleanerID:     cleanerID,
		actualMinutes: actualMinutes,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (c CompleteJobCommand) Validate() error {
	return c.guard.Validate(ErrCompleteJobCommandIsNotConstructed)
}

func (c CompleteJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CompleteJobCommand) CleanerID() kernel.UUID {
	return c.cleanerID
}

func (c CompleteJobCommand) ActualMinutes() int {
	return c.actualMinutes
}
