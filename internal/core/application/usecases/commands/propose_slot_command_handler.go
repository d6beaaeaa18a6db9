package commands

import (
	"context"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/pkg/clock"
)

// ProposeSlotCommandHandler adds a pending slot to a job. A cleaner can only propose
// windows that fit around their existing commitments.
type ProposeSlotCommandHandler struct {
	uowFactory JobUoWFactory
	clock      clock.Clock
}

func NewProposeSlotCommandHandler(uowFactory JobUoWFactory, clk clock.Clock) ProposeSlotCommandHandler {
	return ProposeSlotCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h ProposeSlotCommandHandler) Handle(ctx context.Context, cmd ProposeSlotCommand) error {
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

	if _, err = aggregate.ProposeSlot(
		cmd.SlotID(),
		cmd.ProposerID(),
		cmd.Window(),
		cmd.ProposedByCleaner(),
		h.clock.Now(),
	); err != nil {
		return err
	}

	if cmd.ProposedByCleaner() {
		booked, checkErr := services.NewConflictChecker(jobs).
			HasConflictExcluding(ctx, cmd.ProposerID(), cmd.Window(), aggregate.ID())
		if checkErr != nil {
			return checkErr
		}
		if booked {
			return job.ErrCleanerNotAvailable
		}
	}

	if err = jobs.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
