package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrGetTrackingStatusQueryIsNotConstructed = errors.New(
	"GetTrackingStatusQuery must be created via NewGetTrackingStatusQuery constructor",
)

// GetTrackingStatusQuery reads the live tracking session of a job. The working cleaner
// and the job's client may read it.
type GetTrackingStatusQuery struct {
	jobID   kernel.UUID
	actorID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetTrackingStatusQuery(jobID, actorID kernel.UUID) (GetTrackingStatusQuery, error) {
	if err := jobID.Validate(); err != nil {
		return GetTrackingStatusQuery{}, errs.NewValueIsRequiredErrorWithCause("jobID", err)
	}
	if err := actorID.Validate(); err != nil {
		return GetTrackingStatusQuery{}, errs.NewValueIsRequiredErrorWithCause("actorID", err)
	}
	return GetTrackingStatusQuery{jobID: jobID, actorID: actorID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTrackingStatusQuery) Validate() error {
	return q.guard.Validate(ErrGetTrackingStatusQueryIsNotConstructed)
}

type GetTrackingStatusQueryHandler struct {
	store ports.TrackingStore
	db    *gorm.DB
	clock clock.Clock
}

func NewGetTrackingStatusQueryHandler(store ports.TrackingStore, db *gorm.DB, clk clock.Clock) GetTrackingStatusQueryHandler {
	return GetTrackingStatusQueryHandler{store: store, db: db, clock: clk}
}

// Handle returns the session status at the current instant. A job without an active
// session yields an ObjectNotFoundError caused by tracking.ErrNoActiveSession.
func (h GetTrackingStatusQueryHandler) Handle(ctx context.Context, query GetTrackingStatusQuery) (tracking.Status, error) {
	if err := query.Validate(); err != nil {
		return tracking.Status{}, err
	}

	session, err := h.store.Get(ctx, query.jobID)
	if errors.Is(err, tracking.ErrNoActiveSession) {
		return tracking.Status{}, errs.NewObjectNotFoundErrorWithCause("tracking session", query.jobID.String(), err)
	}
	if err != nil {
		return tracking.Status{}, fmt.Errorf("load tracking session: %w", err)
	}

	if !session.CleanerID.IsEqual(query.actorID) {
		var clientID uuid.UUID
		err = h.db.WithContext(ctx).
			Raw(`SELECT client_id FROM jobs WHERE id = ?`, query.jobID.Bytes()).
			Row().
			Scan(&clientID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return tracking.Status{}, err
		}
		if clientID != query.actorID.Bytes() {
			return tracking.Status{}, errs.NewNotAuthorizedError(query.actorID.String(), "read this tracking session")
		}
	}

	return session.Status(h.clock.Now()), nil
}
