package queries

import (
	"context"
	"database/sql"
	"errors"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrListJobPaymentsQueryIsNotConstructed = errors.New(
	"ListJobPaymentsQuery must be created via NewListJobPaymentsQuery constructor",
)

// ListJobPaymentsQuery lists every payment attempt of a job, oldest first. Only the
// job's client may list them.
type ListJobPaymentsQuery struct {
	jobID   kernel.UUID
	actorID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewListJobPaymentsQuery(jobID, actorID kernel.UUID) (ListJobPaymentsQuery, error) {
	if err := jobID.Validate(); err != nil {
		return ListJobPaymentsQuery{}, errs.NewValueIsRequiredErrorWithCause("jobID", err)
	}
	if err := actorID.Validate(); err != nil {
		return ListJobPaymentsQuery{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	return ListJobPaymentsQuery{jobID: jobID, actorID: actorID, guard: guard.NewConstructorGuard()}, nil
}

func (q ListJobPaymentsQuery) Validate() error {
	return q.guard.Validate(ErrListJobPaymentsQueryIsNotConstructed)
}

type ListJobPaymentsQueryHandler struct {
	db *gorm.DB
}

func NewListJobPaymentsQueryHandler(db *gorm.DB) ListJobPaymentsQueryHandler {
	return ListJobPaymentsQueryHandler{db: db}
}

func (h ListJobPaymentsQueryHandler) Handle(ctx context.Context, query ListJobPaymentsQuery) ([]PaymentView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	db := h.db.WithContext(ctx)

	var clientID uuid.UUID
	err := db.Raw(`SELECT client_id FROM jobs WHERE id = ?`, query.jobID.Bytes()).Row().Scan(&clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NewObjectNotFoundError("job", query.jobID.String())
	}
	if err != nil {
		return nil, err
	}
	if clientID != query.actorID.Bytes() {
		return nil, errs.NewNotAuthorizedError(query.actorID.String(), "list payments of this job")
	}

	rows, err := db.Raw(`
		SELECT `+paymentColumns+`
		FROM payments
		WHERE job_id = ?
		ORDER BY created_at, id`, query.jobID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	return collectPayments(rows)
}
