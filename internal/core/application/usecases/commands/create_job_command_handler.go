package commands

import (
	"context"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// CreateJobCommandHandler prices and persists a new Pending job.
//
// Example:
//
//	handler := NewCreateJobCommandHandler(uowFactory, costs, publisher, clock.System)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("job creation failed: %w", err)
//	}
type CreateJobCommandHandler struct {
	uowFactory JobUoWFactory
	costs      services.CostCalculator
	publisher  ports.EventPublisher
	clock      clock.Clock
}

func NewCreateJobCommandHandler(
	uowFactory JobUoWFactory,
	costs services.CostCalculator,
	publisher ports.EventPublisher,
	clk clock.Clock,
) CreateJobCommandHandler {
	return CreateJobCommandHandler{
		uowFactory: uowFactory,
		costs:      costs,
		publisher:  publisher,
		clock:      clk,
	}
}

// Handle snapshots the configured rate into the job, so later rate changes never reprice it.
func (h CreateJobCommandHandler) Handle(ctx context.Context, cmd CreateJobCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	baseCost, err := h.costs.BaseCost(cmd.EstimatedMinutes())
	if err != nil {
		return err
	}

	aggregate, err := job.NewJob(
		cmd.JobID(),
		cmd.ClientID(),
		cmd.Location(),
		cmd.Description(),
		cmd.EstimatedMinutes(),
		h.costs.RatePerMinute(),
		baseCost,
		h.clock.Now(),
	)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.JobRepository().Add(ctx, aggregate); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	publishJobEvents(ctx, h.publisher, aggregate.PullEvents())
	return nil
}
