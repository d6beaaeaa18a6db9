package commands

import (
	"context"
)

type RejectSlotCommandHandler struct {
	uowFactory JobUoWFactory
}

func NewRejectSlotCommandHandler(uowFactory JobUoWFactory) RejectSlotCommandHandler {
	return RejectSlotCommandHandler{uowFactory: uowFactory}
}

func (h RejectSlotCommandHandler) Handle(ctx context.Context, cmd RejectSlotCommand) error {
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

	if _, err = aggregate.RejectSlot(cmd.SlotID(), cmd.ClientID()); err != nil {
		return err
	}

	if err = jobs.Update(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
