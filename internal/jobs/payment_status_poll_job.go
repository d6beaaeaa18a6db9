package jobs

import (
	"context"
	"log/slog"
	"time"

	"cleaning/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type pollPaymentsHandler interface {
	Handle(ctx context.Context, cmd commands.PollPaymentsCommand) (commands.PollPaymentsResult, error)
}

// PaymentStatusPollJob asks the gateway about charges whose callback is overdue.
type PaymentStatusPollJob struct {
	handler   pollPaymentsHandler
	schedule  string
	olderThan time.Duration
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewPaymentStatusPollJob(handler pollPaymentsHandler, cfg Config, logger *slog.Logger) *PaymentStatusPollJob {
	return &PaymentStatusPollJob{
		handler:   handler,
		schedule:  cfg.PollSchedule,
		olderThan: cfg.PollOlderThan,
		batchSize: cfg.BatchSize,
		timeout:   cfg.RunTimeout,
		cron:      newCron(),
		logger:    logger.With("component", "payment_status_poll_job"),
	}
}

// Start registers the job and starts its scheduler.
func (j *PaymentStatusPollJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("payment status poll job started", "schedule", j.schedule)
	return nil
}

// Run performs a single poll.
func (j *PaymentStatusPollJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewPollPaymentsCommand(j.olderThan, j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "invalid poll configuration", "error", err)
		return
	}
	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "payment status poll failed", "error", err)
		return
	}
	if result.Checked > 0 {
		j.logger.InfoContext(ctx, "payment status poll finished", "checked", result.Checked, "settled", result.Settled)
	}
}

// Stop stops the scheduler and waits for a running poll to finish.
func (j *PaymentStatusPollJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("payment status poll job stopped")
}
