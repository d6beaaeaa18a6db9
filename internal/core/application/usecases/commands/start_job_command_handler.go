package commands

import (
	"context"
	"log/slog"

	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// StartJobCommandHandler moves a job to InProgress and opens its tracking session.
//
// The session is claimed in the tracking store before the job transaction commits. The
// store claim is the cleaner-level mutual exclusion, so a cleaner with a running session
// elsewhere never gets a second job started. If the job write fails afterwards the
// session is released again.
type StartJobCommandHandler struct {
	uowFactory JobUoWFactory
	store      ports.TrackingStore
	policy     services.WorkPolicy
	publisher  ports.EventPublisher
	clock      clock.Clock
	logger     *slog.Logger
}

func NewStartJobCommandHandler(
	uowFactory JobUoWFactory,
	store ports.TrackingStore,
	policy services.WorkPolicy,
	publisher ports.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) StartJobCommandHandler {
	return StartJobCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		policy:     policy,
		publisher:  publisher,
		clock:      clk,
		logger:     logger.With("component", "start_job_handler"),
	}
}

func (h StartJobCommandHandler) Handle(ctx context.Context, cmd StartJobCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	now := h.clock.Now()

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

	if err = aggregate.Start(cmd.CleanerID(), now); err != nil {
		return err
	}

	if err = h.policy.ValidateStart(aggregate.ScheduledFor(), now); err != nil {
		return err
	}

	session, err := tracking.Start(aggregate.ID(), cmd.CleanerID(), aggregate.EstimatedMinutes(), now)
	if err != nil {
		return err
	}
	if err = h.store.Create(ctx, session); err != nil {
		return err
	}

	if err = jobs.Update(ctx, aggregate); err == nil {
		err = uow.Commit(ctx)
	}
	if err != nil {
		if delErr := h.store.Delete(ctx, aggregate.ID()); delErr != nil {
			h.logger.ErrorContext(ctx, "Failed to release tracking session", "job_id", aggregate.ID(), "error", delErr)
		}
		return err
	}

	publishJobEvents(ctx, h.publisher, aggregate.PullEvents())
	h.publisher.Publish(ctx, tracking.NewEvent(tracking.EventStarted, session, now))
	return nil
}
