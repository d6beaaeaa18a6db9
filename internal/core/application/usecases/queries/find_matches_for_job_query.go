package queries

import (
	"context"
	"errors"
	"log/slog"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrFindMatchesForJobQueryIsNotConstructed = errors.New(
	"FindMatchesForJobQuery must be created via NewFindMatchesForJobQuery constructor",
)

// FindMatchesForJobQuery ranks cleaners for a Pending job on behalf of its client.
type FindMatchesForJobQuery struct {
	jobID   kernel.UUID
	actorID kernel.UUID
	limit   int
	guard   guard.ConstructorGuard
}

func NewFindMatchesForJobQuery(jobID, actorID kernel.UUID, limit int) (FindMatchesForJobQuery, error) {
	if err := jobID.Validate(); err != nil {
		return FindMatchesForJobQuery{}, errs.NewValueIsRequiredErrorWithCause("jobID", err)
	}
	if err := actorID.Validate(); err != nil {
		return FindMatchesForJobQuery{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	limit = pageOrDefault(limit)
	if err := validatePage(limit, 0); err != nil {
		return FindMatchesForJobQuery{}, err
	}
	return FindMatchesForJobQuery{jobID: jobID, actorID: actorID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q FindMatchesForJobQuery) Validate() error {
	return q.guard.Validate(ErrFindMatchesForJobQueryIsNotConstructed)
}

// FindMatchesForJobQueryHandler scores active, verified cleaners within the job's rate
// band and drops those already booked over the job's window. The window is the
// scheduled time, else the earliest pending slot; without either no cleaner is dropped.
// High-quality matches are announced to the matched cleaners.
type FindMatchesForJobQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	engine     services.MatchingEngine
	publisher  ports.EventPublisher
	logger     *slog.Logger
}

func NewFindMatchesForJobQueryHandler(
	uowFactory ports.UnitOfWorkFactory,
	engine services.MatchingEngine,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) FindMatchesForJobQueryHandler {
	return FindMatchesForJobQueryHandler{
		uowFactory: uowFactory,
		engine:     engine,
		publisher:  publisher,
		logger:     logger.With("component", "find_matches_handler"),
	}
}

func (h FindMatchesForJobQueryHandler) Handle(ctx context.Context, query FindMatchesForJobQuery) ([]services.MatchScore, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	aggregate, err := uow.JobRepository().Get(ctx, query.jobID)
	if err != nil {
		return nil, err
	}
	if !aggregate.ClientID().IsEqual(query.actorID) {
		return nil, errs.NewNotAuthorizedError(query.actorID.String(), "find matches for this job")
	}
	if aggregate.Status() != job.Pending {
		return []services.MatchScore{}, nil
	}

	cleaners, err := uow.CleanerRepository().ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	ranked := h.engine.RankCleaners(aggregate, cleaners, 0)
	window, hasWindow := aggregate.ProposedWindow()
	conflicts := services.NewConflictChecker(uow.JobRepository())

	matches := make([]services.MatchScore, 0, min(len(ranked), query.limit))
	for _, score := range ranked {
		if len(matches) == query.limit {
			break
		}
		if hasWindow {
			booked, checkErr := conflicts.HasConflict(ctx, score.CleanerID, window)
			if checkErr != nil {
				return nil, checkErr
			}
			if booked {
				continue
			}
		}
		matches = append(matches, score)
	}

	for _, m := range matches {
		if !m.IsHighQuality() {
			continue
		}
		h.publisher.Publish(ctx, services.MatchFoundEvent{JobID: m.JobID, CleanerID: m.CleanerID, Score: m.Score})
	}
	h.logger.DebugContext(ctx, "matched cleaners", "job_id", query.jobID.String(),
		"candidates", len(ranked), "matches", len(matches))

	return matches, nil
}
