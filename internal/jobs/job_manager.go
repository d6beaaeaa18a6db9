package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"cleaning/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// Config holds schedules in robfig/cron syntax with an optional seconds field, or
// descriptors such as "@every 30s".
type Config struct {
	PollSchedule   string
	PollOlderThan  time.Duration
	ExpirySchedule string
	ExpiryWindow   time.Duration
	BatchSize      int
	RunTimeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollSchedule:   "@every 30s",
		PollOlderThan:  time.Minute,
		ExpirySchedule: "@every 1m",
		ExpiryWindow:   commands.DefaultPaymentExpiry,
		BatchSize:      50,
		RunTimeout:     time.Minute,
	}
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	paymentStatusPollJob *PaymentStatusPollJob
	paymentExpiryJob     *PaymentExpiryJob
}

func NewJobManager(
	pollHandler commands.PollPaymentsCommandHandler,
	expireHandler commands.ExpireStalePaymentsCommandHandler,
	cfg Config,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		paymentStatusPollJob: NewPaymentStatusPollJob(pollHandler, cfg, logger),
		paymentExpiryJob:     NewPaymentExpiryJob(expireHandler, cfg, logger),
	}
}

// StartAll starts all scheduled jobs. A failed start stops the jobs already running.
func (jm *JobManager) StartAll() error {
	if err := jm.paymentStatusPollJob.Start(); err != nil {
		return fmt.Errorf("failed to start payment status poll job: %w", err)
	}

	if err := jm.paymentExpiryJob.Start(); err != nil {
		jm.paymentStatusPollJob.Stop()
		return fmt.Errorf("failed to start payment expiry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ticks.
func (jm *JobManager) StopAll() {
	jm.paymentExpiryJob.Stop()
	jm.paymentStatusPollJob.Stop()
}

// newCron skips a tick while the previous one is still running.
func newCron() *cron.Cron {
	return cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
}
