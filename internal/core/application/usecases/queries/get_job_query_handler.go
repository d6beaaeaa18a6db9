package queries

import (
	"context"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetJobQueryHandler struct {
	db *gorm.DB
}

func NewGetJobQueryHandler(db *gorm.DB) GetJobQueryHandler {
	return GetJobQueryHandler{db: db}
}

func (h GetJobQueryHandler) Handle(ctx context.Context, query GetJobQuery) (JobView, error) {
	if err := query.Validate(); err != nil {
		return JobView{}, err
	}

	db := h.db.WithContext(ctx)
	rows, err := db.Raw(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, query.JobID().Bytes()).Rows()
	if err != nil {
		return JobView{}, err
	}
	jobs, err := collectJobs(rows)
	if err != nil {
		return JobView{}, err
	}
	if len(jobs) == 0 {
		return JobView{}, errs.NewObjectNotFoundError("job", query.JobID().String())
	}
	view := jobs[0]

	if !canRead(view, query.ActorID()) {
		return JobView{}, errs.NewNotAuthorizedError(query.ActorID().String(), "read this job")
	}

	view.Slots, err = h.slots(db, view.ID)
	if err != nil {
		return JobView{}, err
	}
	return view, nil
}

func (h GetJobQueryHandler) slots(db *gorm.DB, jobID kernel.UUID) ([]SlotView, error) {
	rows, err := db.Raw(`
		SELECT id, proposer_id, start_at, end_at, proposed_by_cleaner, acceptance
		FROM schedule_slots
		WHERE job_id = ?
		ORDER BY start_at, id`, jobID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]SlotView, 0)
	for rows.Next() {
		var (
			slot       SlotView
			id         uuid.UUID
			proposerID uuid.UUID
			acceptance int
		)
		if err = rows.Scan(&id, &proposerID, &slot.Start, &slot.End, &slot.ProposedByCleaner, &acceptance); err != nil {
			return nil, err
		}
		if slot.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if slot.ProposerID, err = kernel.UUIDFromBytes(proposerID[:]); err != nil {
			return nil, err
		}
		slot.Acceptance = job.Acceptance(acceptance)
		slots = append(slots, slot)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func canRead(view JobView, actorID kernel.UUID) bool {
	if view.ClientID.IsEqual(actorID) {
		return true
	}
	if view.CleanerID != nil && view.CleanerID.IsEqual(actorID) {
		return true
	}
	return view.Status == job.Pending
}
