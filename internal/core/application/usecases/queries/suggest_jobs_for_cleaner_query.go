package queries

import (
	"context"
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrSuggestJobsForCleanerQueryIsNotConstructed = errors.New(
	"SuggestJobsForCleanerQuery must be created via NewSuggestJobsForCleanerQuery constructor",
)

// pendingScanSize bounds how many Pending jobs are scored per suggestion request.
const pendingScanSize = 200

type SuggestJobsForCleanerQuery struct {
	cleanerID kernel.UUID
	limit     int
	guard     guard.ConstructorGuard
}

func NewSuggestJobsForCleanerQuery(cleanerID kernel.UUID, limit int) (SuggestJobsForCleanerQuery, error) {
	if err := cleanerID.Validate(); err != nil {
		return SuggestJobsForCleanerQuery{}, errs.NewValueIsRequiredErrorWithCause("cleanerID", err)
	}
	limit = pageOrDefault(limit)
	if err := validatePage(limit, 0); err != nil {
		return SuggestJobsForCleanerQuery{}, err
	}
	return SuggestJobsForCleanerQuery{cleanerID: cleanerID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q SuggestJobsForCleanerQuery) Validate() error {
	return q.guard.Validate(ErrSuggestJobsForCleanerQueryIsNotConstructed)
}

// SuggestJobsForCleanerQueryHandler ranks the oldest Pending jobs for a cleaner, skipping
// jobs whose earliest pending slot overlaps the cleaner's bookings.
type SuggestJobsForCleanerQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	engine     services.MatchingEngine
}

func NewSuggestJobsForCleanerQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	engine services.MatchingEngine,
) SuggestJobsForCleanerQueryHandler {
	return SuggestJobsForCleanerQueryHandler{uowFactory: uowFactory, engine: engine}
}

func (h SuggestJobsForCleanerQueryHandler) Handle(
	ctx context.Context,
	query SuggestJobsForCleanerQuery,
) ([]services.MatchScore, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	profile, err := uow.CleanerRepository().Get(ctx, query.cleanerID)
	if err != nil {
		return nil, err
	}
	if !profile.IsAvailableForWork() {
		return []services.MatchScore{}, nil
	}

	pending, err := uow.JobRepository().ListPending(ctx, pendingScanSize, 0)
	if err != nil {
		return nil, err
	}
	isBooked, err := services.NewConflictChecker(uow.JobRepository()).BookedOver(ctx, query.cleanerID)
	if err != nil {
		return nil, err
	}

	free := pending[:0]
	for _, j := range pending {
		if window, ok := j.ProposedWindow(); ok && isBooked(window) {
			continue
		}
		free = append(free, j)
	}

	return h.engine.RankJobs(profile, free, query.limit), nil
}
