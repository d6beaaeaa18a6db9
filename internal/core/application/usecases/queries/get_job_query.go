package queries

import (
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrGetJobQueryIsNotConstructed = errors.New("GetJobQuery must be created via NewGetJobQuery constructor")

// GetJobQuery loads one job with its slots on behalf of an actor. The job's client and
// its assigned cleaner can always read it; any other actor only while it is Pending.
type GetJobQuery struct {
	jobID   kernel.UUID
	actorID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetJobQuery(jobID, actorID kernel.UUID) (GetJobQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetJobQuery{}, errs.NewValueIsRequiredErrorWithCause("jobID", err)
	}
	if err := actorID.Validate(); err != nil {
		return GetJobQuery{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	return GetJobQuery{jobID: jobID, actorID: actorID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetJobQuery) Validate() error {
	return q.guard.Validate(ErrGetJobQueryIsNotConstructed)
}

func (q GetJobQuery) JobID() kernel.UUID {
	return q.jobID
}

func (q GetJobQuery) ActorID() kernel.UUID {
	return q.actorID
}
