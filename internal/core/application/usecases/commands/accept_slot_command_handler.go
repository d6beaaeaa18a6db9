package commands

import (
	"context"

	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
	"cleaning/internal/pkg/errs"
)

// AcceptSlotCommandHandler accepts a slot and assigns the cleaner in one transaction:
// either both happen or neither does.
type AcceptSlotCommandHandler struct {
	uowFactory SchedulingUoWFactory
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewAcceptSlotCommandHandler(
	uowFactory SchedulingUoWFactory,
	publisher ports.EventPublisher,
	clk clock.Clock,
) AcceptSlotCommandHandler {
	return AcceptSlotCommandHandler{uowFactory: uowFactory, publisher: publisher, clock: clk}
}

func (h AcceptSlotCommandHandler) Handle(ctx context.Context, cmd AcceptSlotCommand) error {
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

	slot, err := aggregate.AcceptSlot(cmd.SlotID(), cmd.ClientID())
	if err != nil {
		return err
	}

	cleanerID := cmd.CleanerID()
	if cleanerID == nil {
		if !slot.ProposedByCleaner() {
			return errs.NewValueIsRequiredError("cleanerID")
		}
		proposer := slot.ProposerID()
		cleanerID = &proposer
	}

	if err = assignCleaner(ctx, uow, aggregate, *cleanerID, slot.ID(), cmd.ClientID(), h.clock.Now()); err != nil {
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
