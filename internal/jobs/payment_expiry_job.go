package jobs

import (
	"context"
	"log/slog"
	"time"

	"cleaning/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type expirePaymentsHandler interface {
	Handle(ctx context.Context, cmd commands.ExpireStalePaymentsCommand) (int, error)
}

// PaymentExpiryJob fails payments that never received an outcome.
type PaymentExpiryJob struct {
	handler   expirePaymentsHandler
	schedule  string
	window    time.Duration
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewPaymentExpiryJob(handler expirePaymentsHandler, cfg Config, logger *slog.Logger) *PaymentExpiryJob {
	return &PaymentExpiryJob{
		handler:   handler,
		schedule:  cfg.ExpirySchedule,
		window:    cfg.ExpiryWindow,
		batchSize: cfg.BatchSize,
		timeout:   cfg.RunTimeout,
		cron:      newCron(),
		logger:    logger.With("component", "payment_expiry_job"),
	}
}

func (j *PaymentExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("payment expiry job started", "schedule", j.schedule, "window", j.window)
	return nil
}

func (j *PaymentExpiryJob) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewExpireStalePaymentsCommand(j.window, j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "invalid expiry configuration", "error", err)
		return
	}
	expired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "payment expiry sweep failed", "error", err)
		return
	}
	if expired > 0 {
		j.logger.InfoContext(ctx, "stale payments expired", "count", expired)
	}
}

func (j *PaymentExpiryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("payment expiry job stopped")
}
