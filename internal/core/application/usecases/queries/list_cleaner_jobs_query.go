package queries

import (
	"context"
	"errors"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListCleanerJobsQueryIsNotConstructed = errors.New(
	"ListCleanerJobsQuery must be created via NewListCleanerJobsQuery constructor",
)

// ListCleanerJobsQuery pages through the jobs currently assigned to a cleaner.
// Canceled jobs drop out because cancellation clears the assignment.
type ListCleanerJobsQuery struct {
	cleanerID kernel.UUID
	status    *job.Status
	limit     int
	offset    int
	guard     guard.ConstructorGuard
}

func NewListCleanerJobsQuery(cleanerID kernel.UUID, status *job.Status, limit, offset int) (ListCleanerJobsQuery, error) {
	if err := cleanerID.Validate(); err != nil {
		return ListCleanerJobsQuery{}, errs.NewValueIsRequiredErrorWithCause("cleanerID", err)
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			return ListCleanerJobsQuery{}, err
		}
	}
	limit = pageOrDefault(limit)
	if err := validatePage(limit, offset); err != nil {
		return ListCleanerJobsQuery{}, err
	}
	return ListCleanerJobsQuery{
		cleanerID: cleanerID,
		status:    status,
		limit:     limit,
		offset:    offset,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (q ListCleanerJobsQuery) Validate() error {
	return q.guard.Validate(ErrListCleanerJobsQueryIsNotConstructed)
}

type ListCleanerJobsQueryHandler struct {
	db *gorm.DB
}

func NewListCleanerJobsQueryHandler(db *gorm.DB) ListCleanerJobsQueryHandler {
	return ListCleanerJobsQueryHandler{db: db}
}

func (h ListCleanerJobsQueryHandler) Handle(ctx context.Context, query ListCleanerJobsQuery) ([]JobView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return listJobs(h.db.WithContext(ctx), "cleaner_id", query.cleanerID, query.status, query.limit, query.offset)
}
