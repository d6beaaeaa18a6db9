package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.DiscardHandler)

type fakePoller struct {
	calls atomic.Int32
	last  atomic.Value
	err   error
}

func (f *fakePoller) Handle(_ context.Context, cmd commands.PollPaymentsCommand) (commands.PollPaymentsResult, error) {
	f.calls.Add(1)
	f.last.Store(cmd)
	return commands.PollPaymentsResult{Checked: 2, Settled: 1}, f.err
}

type fakeExpirer struct {
	calls atomic.Int32
	last  atomic.Value
}

func (f *fakeExpirer) Handle(_ context.Context, cmd commands.ExpireStalePaymentsCommand) (int, error) {
	f.calls.Add(1)
	f.last.Store(cmd)
	return 1, nil
}

func TestPaymentStatusPollJob_Run(t *testing.T) {
	poller := &fakePoller{}
	cfg := jobs.DefaultConfig()
	cfg.PollOlderThan = 2 * time.Minute
	cfg.BatchSize = 10

	jobs.NewPaymentStatusPollJob(poller, cfg, discardLogger).Run(context.Background())

	require.EqualValues(t, 1, poller.calls.Load())
	cmd := poller.last.Load().(commands.PollPaymentsCommand)
	assert.Equal(t, 2*time.Minute, cmd.OlderThan())
	assert.Equal(t, 10, cmd.Limit())
}

func TestPaymentStatusPollJob_RunSurvivesErrors(t *testing.T) {
	poller := &fakePoller{err: errors.New("gateway down")}
	job := jobs.NewPaymentStatusPollJob(poller, jobs.DefaultConfig(), discardLogger)

	assert.NotPanics(t, func() { job.Run(context.Background()) })
	assert.EqualValues(t, 1, poller.calls.Load())
}

func TestPaymentStatusPollJob_InvalidConfigSkipsHandler(t *testing.T) {
	poller := &fakePoller{}
	cfg := jobs.DefaultConfig()
	cfg.BatchSize = 0

	jobs.NewPaymentStatusPollJob(poller, cfg, discardLogger).Run(context.Background())
	assert.Zero(t, poller.calls.Load())
}

func TestPaymentExpiryJob_Run(t *testing.T) {
	expirer := &fakeExpirer{}
	cfg := jobs.DefaultConfig()

	jobs.NewPaymentExpiryJob(expirer, cfg, discardLogger).Run(context.Background())

	require.EqualValues(t, 1, expirer.calls.Load())
	cmd := expirer.last.Load().(commands.ExpireStalePaymentsCommand)
	assert.Equal(t, commands.DefaultPaymentExpiry, cmd.Window())
}

func TestPaymentExpiryJob_Schedules(t *testing.T) {
	expirer := &fakeExpirer{}
	cfg := jobs.DefaultConfig()
	cfg.ExpirySchedule = "@every 1s"

	job := jobs.NewPaymentExpiryJob(expirer, cfg, discardLogger)
	require.NoError(t, job.Start())
	defer job.Stop()

	assert.Eventually(t, func() bool { return expirer.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestPaymentStatusPollJob_BadSchedule(t *testing.T) {
	cfg := jobs.DefaultConfig()
	cfg.PollSchedule = "every now and then"

	err := jobs.NewPaymentStatusPollJob(&fakePoller{}, cfg, discardLogger).Start()
	assert.Error(t, err)
}
