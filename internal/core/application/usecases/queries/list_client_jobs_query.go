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

var ErrListClientJobsQueryIsNotConstructed = errors.New(
	"ListClientJobsQuery must be created via NewListClientJobsQuery constructor",
)

// ListClientJobsQuery pages through the jobs a client created, newest first.
// A nil status lists every status.
type ListClientJobsQuery struct {
	clientID kernel.UUID
	status   *job.Status
	limit    int
	offset   int
	guard    guard.ConstructorGuard
}

func NewListClientJobsQuery(clientID kernel.UUID, status *job.Status, limit, offset int) (ListClientJobsQuery, error) {
	if err := clientID.Validate(); err != nil {
		return ListClientJobsQuery{}, errs.NewValueIsRequiredErrorWithCause("clientID", err)
	}
	if status != nil {
		if err := status.Validate(); err != nil {
			return ListClientJobsQuery{}, err
		}
	}
	limit = pageOrDefault(limit)
	if err := validatePage(limit, offset); err != nil {
		return ListClientJobsQuery{}, err
	}
	return ListClientJobsQuery{
		clientID: clientID,
		status:   status,
		limit:    limit,
		offset:   offset,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q ListClientJobsQuery) Validate() error {
	return q.guard.Validate(ErrListClientJobsQueryIsNotConstructed)
}

type ListClientJobsQueryHandler struct {
	db *gorm.DB
}

func NewListClientJobsQueryHandler(db *gorm.DB) ListClientJobsQueryHandler {
	return ListClientJobsQueryHandler{db: db}
}

func (h ListClientJobsQueryHandler) Handle(ctx context.Context, query ListClientJobsQuery) ([]JobView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return listJobs(h.db.WithContext(ctx), "client_id", query.clientID, query.status, query.limit, query.offset)
}

// listJobs filters by one party column. column is always a constant from this package.
func listJobs(db *gorm.DB, column string, partyID kernel.UUID, status *job.Status, limit, offset int) ([]JobView, error) {
	sql := `SELECT ` + jobColumns + ` FROM jobs WHERE ` + column + ` = ?`
	args := []any{partyID.Bytes()}
	if status != nil {
		sql += ` AND status = ?`
		args = append(args, int(*status))
	}
	sql += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	return collectJobs(rows)
}
