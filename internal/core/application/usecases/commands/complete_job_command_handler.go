package commands

import (
	"context"
	"log/slog"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
)

// DiscrepancyThresholdMinutes is how far reported minutes may drift from the wall clock
// before a warning is logged. The reported value is still used.
const DiscrepancyThresholdMinutes = 30

// CompleteJobResult is the billing outcome of a completed job.
type CompleteJobResult struct {
	ActualMinutes int
	FinalCost     kernel.Money
}

// CompleteJobCommandHandler prices the actual duration and completes the job. Any tracking
// session still open for the job is discarded once the job is committed.
type CompleteJobCommandHandler struct {
	uowFactory JobUoWFactory
	store      ports.TrackingStore
	costs      services.CostCalculator
	publisher  ports.EventPublisher
	clock      clock.Clock
	logger     *slog.Logger
}

func NewCompleteJobCommandHandler(
	uowFactory JobUoWFactory,
	store ports.TrackingStore,
	costs services.CostCalculator,
	publisher ports.EventPublisher,
	clk clock.Clock,
	logger *slog.Logger,
) CompleteJobCommandHandler {
	return CompleteJobCommandHandler{
		uowFactory: uowFactory,
		store:      store,
		costs:      costs,
		publisher:  publisher,
		clock:      clk,
		logger:     logger.With("component", "complete_job_handler"),
	}
}

func (h CompleteJobCommandHandler) Handle(ctx context.Context, cmd CompleteJobCommand) (CompleteJobResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompleteJobResult{}, err
	}
	now := h.clock.Now()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return CompleteJobResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	jobs := uow.JobRepository()
	aggregate, err := jobs.GetForUpdate(ctx, cmd.JobID())
	if err != nil {
		return CompleteJobResult{}, err
	}

	finalCost, err := h.costs.FinalCost(aggregate.BaseCost(), aggregate.EstimatedMinutes(), cmd.ActualMinutes())
	if err != nil {
		return CompleteJobResult{}, err
	}

	if err = aggregate.Complete(cmd.CleanerID(), cmd.ActualMinutes(), finalCost, now); err != nil {
		return CompleteJobResult{}, err
	}

	if wall := aggregate.WallClockMinutes(now); abs(wall-cmd.ActualMinutes()) > DiscrepancyThresholdMinutes {
		h.logger.WarnContext(ctx, "Reported duration differs from wall clock",
			"job_id", aggregate.ID(),
			"actual_minutes", cmd.ActualMinutes(),
			"wall_clock_minutes", wall,
		)
	}

	if err = jobs.Update(ctx, aggregate); err != nil {
		return CompleteJobResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return CompleteJobResult{}, err
	}

	if err = h.store.Delete(ctx, aggregate.ID()); err != nil {
		h.logger.ErrorContext(ctx, "Failed to discard tracking session", "job_id", aggregate.ID(), "error", err)
	}

	publishJobEvents(ctx, h.publisher, aggregate.PullEvents())
	return CompleteJobResult{ActualMinutes: cmd.ActualMinutes(), FinalCost: finalCost}, nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
