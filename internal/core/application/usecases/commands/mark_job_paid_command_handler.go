package commands

import (
	"context"

	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

type MarkJobPaidCommandHandler struct {
	uowFactory JobUoWFactory
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewMarkJobPaidCommandHandler(
	uowFactory JobUoWFactory,
	publisher ports.EventPublisher,
	clk clock.Clock,
) MarkJobPaidCommandHandler {
	return MarkJobPaidCommandHandler{uowFactory: uowFactory, publisher: publisher, clock: clk}
}

// Handle moves Completed to Paid. An already Paid job commits nothing and publishes nothing.
func (h MarkJobPaidCommandHandler) Handle(ctx context.Context, cmd MarkJobPaidCommand) error {
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

	changed, err := aggregate.MarkPaid(cmd.ActorID(), h.clock.Now())
	if err != nil || !changed {
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
