package commands

import (
	"context"
	"log/slog"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// CancelJobCommandHandler cancels a job and, when work had started, drops its tracking session.
type CancelJobCommandHandler struct {
	uowFactory JobUoWFactory
	store      ports.TrackingStore
	publisher  ports.EventPublisher
	clock      clock.Clock
	logger     *slog.Logger
}

func NewCancelJobCommandHandler(
	uowFactory JobUoWFactory,
	store ports.TrackingStore,
	publisher ports.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) CancelJobCommandHandler {
	return CancelJobCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		publisher:  publisher,
		clock:      clk,
		logger:     logger.With("component", "cancel_job_handler"),
	}
}

func (h CancelJobCommandHandler) Handle(ctx context.Context, cmd CancelJobCommand) error {
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

	wasInProgress := aggregate.Status() == job.InProgress
	if err = aggregate.Cancel(cmd.ActorID(), cmd.IsClient(), cmd.Reason(), h.clock.Now()); err != nil {
		return err
	}

	if err = jobs.Update(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	if wasInProgress {
		if err = h.store.Delete(ctx, aggregate.ID()); err != nil {
			h.logger.ErrorContext(ctx, "Failed to discard tracking session", "job_id", aggregate.ID(), "error", err)
		}
	}

	publishJobEvents(ctx, h.publisher, aggregate.PullEvents())
	return nil
}
