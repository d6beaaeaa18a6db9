package queries

import (
	"context"
	"errors"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/pkg/guard"

	"gorm.io/gorm"
)

var ErrListAvailableJobsQueryIsNotConstructed = errors.New(
	"ListAvailableJobsQuery must be created via NewListAvailableJobsQuery constructor",
)

// ListAvailableJobsQuery pages through Pending jobs, oldest first, so the jobs waiting
// longest are seen first by cleaners.
type ListAvailableJobsQuery struct {
	limit  int
	offset int
	guard  guard.ConstructorGuard
}

func NewListAvailableJobsQuery(limit, offset int) (ListAvailableJobsQuery, error) {
	limit = pageOrDefault(limit)
	if err := validatePage(limit, offset); err != nil {
		return ListAvailableJobsQuery{}, err
	}
	return ListAvailableJobsQuery{limit: limit, offset: offset, guard: guard.NewConstructorGuard()}, nil
}

func (q ListAvailableJobsQuery) Validate() error {
	return q.guard.Validate(ErrListAvailableJobsQueryIsNotConstructed)
}

type ListAvailableJobsQueryHandler struct {
	db *gorm.DB
}

func NewListAvailableJobsQueryHandler(db *gorm.DB) ListAvailableJobsQueryHandler {
	return ListAvailableJobsQueryHandler{db: db}
}

func (h ListAvailableJobsQueryHandler) Handle(ctx context.Context, query ListAvailableJobsQuery) ([]JobView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT `+jobColumns+`
		FROM jobs
		WHERE status = ?
		ORDER BY created_at, id
		LIMIT ? OFFSET ?`, int(job.Pending), query.limit, query.offset).Rows()
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}
