// Package notifier delivers events to a downstream sink in the background.
//
// Publish never blocks and never fails the caller: events go into a bounded queue that a
// fixed pool of workers drains. Each delivery is retried with exponential backoff until
// it succeeds, the retry budget is spent or the dispatcher shuts down. A full queue drops
// the event and logs it.
package notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"cleaning/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
)

// Sink delivers one event. Returning an error wrapped with backoff.Permanent stops retries.
type Sink interface {
	Deliver(ctx context.Context, event ports.Event) error
}

type Config struct {
	QueueSize       int
	Workers         int
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueSize:       1024,
		Workers:         4,
		InitialInterval: 200 * time.Millisecond,
		MaxElapsedTime:  2 * time.Minute,
	}
}

// Dispatcher implements ports.EventPublisher.
type Dispatcher struct {
	sink   Sink
	cfg    Config
	logger *slog.Logger

	queue chan ports.Event
	wg    sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	started bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewDispatcher(sink Sink, cfg Config, logger *slog.Logger) *Dispatcher {
	defaults := DefaultConfig()
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = defaults.MaxElapsedTime
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sink:   sink,
		cfg:    cfg,
		logger: logger.With("component", "notifier"),
		queue:  make(chan ports.Event, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
	d.logger.Info("notifier started", "workers", d.cfg.Workers, "queue_size", d.cfg.QueueSize)
}

// Publish enqueues the event. The request context is only used for logging, since
// delivery outlives the request.
func (d *Dispatcher) Publish(ctx context.Context, event ports.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.WarnContext(ctx, "notifier is stopped, event dropped", "event", event.Name())
		return
	}

	select {
	case d.queue <- event:
	default:
		d.logger.ErrorContext(ctx, "notifier queue is full, event dropped", "event", event.Name())
	}
}

// Stop closes the queue and waits for the workers to drain it. When ctx ends first the
// pending retries are aborted.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for event := range d.queue {
		d.deliver(event)
	}
}

func (d *Dispatcher) deliver(event ports.Event) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = d.cfg.InitialInterval
	policy.MaxElapsedTime = d.cfg.MaxElapsedTime

	attempts := 0
	err := backoff.RetryNotify(
		func() error {
			attempts++
			return d.sink.Deliver(d.ctx, event)
		},
		backoff.WithContext(policy, d.ctx),
		func(err error, wait time.Duration) {
			d.logger.Warn("event delivery failed, retrying",
				"event", event.Name(), "attempt", attempts, "retry_in", wait, "error", err)
		},
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Error("event delivery abandoned", "event", event.Name(), "attempts", attempts, "error", err)
		return
	}
	if err != nil {
		d.logger.Warn("event delivery canceled by shutdown", "event", event.Name())
	}
}
