package commands

import (
	"context"
	"fmt"
	"time"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
	"cleaning/internal/pkg/errs"
)

// AssignCleanerCommandHandler schedules a job for a cleaner. The cleaner row is locked
// before the conflict check so two assignments of the same cleaner cannot both pass it.
type AssignCleanerCommandHandler struct {
	uowFactory SchedulingUoWFactory
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewAssignCleanerCommandHandler(
	uowFactory SchedulingUoWFactory,
	publisher ports.EventPublisher,
	clk clock.Clock,
) AssignCleanerCommandHandler {
	return AssignCleanerCommandHandler{uowFactory: uowFactory, publisher: publisher, clock: clk}
}

func (h AssignCleanerCommandHandler) Handle(ctx context.Context, cmd AssignCleanerCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobs := uow.JobRepository()
	aggregate, err := jobs.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return err
	}
	if !aggregate.ClientID().IsEqual(cmd.ActorID()) {
		return errs.NewNotAuthorizedError(cmd.ActorID().String(), "assign a cleaner to this job")
	}

	if err = assignCleaner(ctx, uow, aggregate, cmd.CleanerID(), cmd.SlotID(), cmd.ActorID(), h.clock.Now()); err != nil {
		return err
	}

	if err = jobs.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishJobEvents(ctx, h.publisher, aggregate.PullEvents())
	return nil
}

// assignCleaner locks the cleaner, checks eligibility and availability over the slot and
// assigns. The caller persists the job.
func assignCleaner(
	ctx context.Context,
	uow SchedulingUoW,
	aggregate *job.Job,
	cleanerID, slotID, actorID kernel.UUID,
	now time.Time,
) error {
	profile, err := uow.CleanerRepository().Lock(ctx, cleanerID)
	if err != nil {
		return err
	}
	if !profile.IsAvailableForWork() {
		return fmt.Errorf("%w: cleaner %s is not active and verified", job.ErrCleanerNotAvailable, cleanerID)
	}

	slot, err := aggregate.Slot(slotID)
	if err != nil {
		return err
	}

	booked, err := services.NewConflictChecker(uow.JobRepository()).
		HasConflictExcluding(ctx, cleanerID, slot.Window(), aggregate.ID())
	if err != nil {
		return err
	}
	if booked {
		return fmt.Errorf("%w: cleaner %s is booked during %s", job.ErrCleanerNotAvailable, cleanerID, slot.Window())
	}

	return aggregate.Assign(cleanerID, slotID, actorID, now)
}
