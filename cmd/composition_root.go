package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpadapter "cleaning/internal/adapters/in/http"
	"cleaning/internal/adapters/out/mpesa"
	"cleaning/internal/adapters/out/notifier"
	"cleaning/internal/adapters/out/postgres"
	"cleaning/internal/adapters/out/redis/eventbus"
	"cleaning/internal/adapters/out/redis/trackingstore"
	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/core/application/usecases/queries"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/jobs"
	"cleaning/internal/pkg/clock"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"gorm.io/gorm"
)

// CompositionRoot builds every handler once from shared infrastructure.
type CompositionRoot struct {
	cfg    Config
	logger *slog.Logger
	clock  clock.Clock

	gormDB     *gorm.DB
	rdb        redis.UniversalClient
	uowFactory *postgres.GormUnitOfWorkFactory

	trackingStore ports.TrackingStore
	dispatcher    *notifier.Dispatcher
	mpesaClient   *mpesa.Client
	costs         services.CostCalculator
	policy        services.WorkPolicy
	engine        services.MatchingEngine
}

type options struct {
	clock         clock.Clock
	trackingStore ports.TrackingStore
	eventSink     notifier.Sink
	httpClient    *http.Client
}

type Option func(*options)

// WithClock replaces the system clock.
func WithClock(clk clock.Clock) Option {
	return func(o *options) { o.clock = clk }
}

// WithTrackingStore replaces the Redis tracking store.
func WithTrackingStore(store ports.TrackingStore) Option {
	return func(o *options) { o.trackingStore = store }
}

// WithEventSink replaces the Redis pub/sub sink behind the notifier.
func WithEventSink(sink notifier.Sink) Option {
	return func(o *options) { o.eventSink = sink }
}

// WithHTTPClient sets the client used for gateway calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) { o.httpClient = client }
}

// NewCompositionRoot wires the infrastructure. rdb may be nil only when both the tracking
// store and the event sink are supplied as options.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	rdb redis.UniversalClient,
	logger *slog.Logger,
	opts ...Option,
) (*CompositionRoot, error) {
	o := options{clock: clock.System}
	for _, opt := range opts {
		opt(&o)
	}

	if o.trackingStore == nil || o.eventSink == nil {
		if rdb == nil {
			return nil, errors.New("redis client is required for tracking sessions and events")
		}
		if o.trackingStore == nil {
			o.trackingStore = trackingstore.New(rdb, cfg.TrackingSessionTTL)
		}
		if o.eventSink == nil {
			o.eventSink = eventbus.NewPublisher(rdb, cfg.EventChannelPrefix)
		}
	}

	rate, err := kernel.NewMoney(cfg.RatePerMinute)
	if err != nil {
		return nil, fmt.Errorf("rate per minute: %w", err)
	}
	costs, err := services.NewCostCalculator(rate)
	if err != nil {
		return nil, fmt.Errorf("rate per minute: %w", err)
	}

	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time zone: %w", err)
	}
	policy, err := services.NewWorkPolicy(cfg.WorkStartHour, cfg.WorkEndHour, location, cfg.StartTolerance)
	if err != nil {
		return nil, fmt.Errorf("work hours: %w", err)
	}

	mpesaClient, err := mpesa.NewClient(mpesa.Config{
		BaseURL:        cfg.Mpesa.BaseURL,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		PassKey:        cfg.Mpesa.PassKey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
	}, o.httpClient, o.clock)
	if err != nil {
		return nil, err
	}

	notifierCfg := notifier.DefaultConfig()
	notifierCfg.QueueSize = cfg.NotifierQueueSize
	notifierCfg.Workers = cfg.NotifierWorkers
	notifierCfg.MaxElapsedTime = cfg.NotifierMaxElapsed

	return &CompositionRoot{
		cfg:           cfg,
		logger:        logger,
		clock:         o.clock,
		gormDB:        gormDB,
		rdb:           rdb,
		uowFactory:    postgres.NewGormUnitOfWorkFactory(gormDB),
		trackingStore: o.trackingStore,
		dispatcher:    notifier.NewDispatcher(o.eventSink, notifierCfg, logger),
		mpesaClient:   mpesaClient,
		costs:         costs,
		policy:        policy,
		engine:        services.NewMatchingEngine(),
	}, nil
}

// Dispatcher delivers events published by handlers. The caller starts and stops it.
func (c *CompositionRoot) Dispatcher() *notifier.Dispatcher {
	return c.dispatcher
}

func (c *CompositionRoot) jobUoWFactory() commands.JobUoWFactory {
	return FuncJobUoWFactory(func() commands.JobUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) schedulingUoWFactory() commands.SchedulingUoWFactory {
	return FuncSchedulingUoWFactory(func() commands.SchedulingUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) paymentUoWFactory() commands.PaymentUoWFactory {
	return FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateJobCommandHandler() commands.CreateJobCommandHandler {
	return commands.NewCreateJobCommandHandler(c.jobUoWFactory(), c.costs, c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateProposeSlotCommandHandler() commands.ProposeSlotCommandHandler {
	return commands.NewProposeSlotCommandHandler(c.jobUoWFactory(), c.clock)
}

func (c *CompositionRoot) CreateAcceptSlotCommandHandler() commands.AcceptSlotCommandHandler {
	return commands.NewAcceptSlotCommandHandler(c.schedulingUoWFactory(), c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateRejectSlotCommandHandler() commands.RejectSlotCommandHandler {
	return commands.NewRejectSlotCommandHandler(c.jobUoWFactory())
}

func (c *CompositionRoot) CreateAssignCleanerCommandHandler() commands.AssignCleanerCommandHandler {
	return commands.NewAssignCleanerCommandHandler(c.schedulingUoWFactory(), c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateStartJobCommandHandler() commands.StartJobCommandHandler {
	return commands.NewStartJobCommandHandler(
		c.jobUoWFactory(), c.trackingStore, c.policy, c.dispatcher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCompleteJobCommandHandler() commands.CompleteJobCommandHandler {
	return commands.NewCompleteJobCommandHandler(
		c.jobUoWFactory(), c.trackingStore, c.costs, c.dispatcher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateCancelJobCommandHandler() commands.CancelJobCommandHandler {
	return commands.NewCancelJobCommandHandler(c.jobUoWFactory(), c.trackingStore, c.dispatcher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateMarkJobPaidCommandHandler() commands.MarkJobPaidCommandHandler {
	return commands.NewMarkJobPaidCommandHandler(c.jobUoWFactory(), c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreatePauseTrackingCommandHandler() commands.PauseTrackingCommandHandler {
	return commands.NewPauseTrackingCommandHandler(c.trackingStore, c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateResumeTrackingCommandHandler() commands.ResumeTrackingCommandHandler {
	return commands.NewResumeTrackingCommandHandler(c.trackingStore, c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateStopTrackingCommandHandler() commands.StopTrackingCommandHandler {
	return commands.NewStopTrackingCommandHandler(
		c.trackingStore, c.CreateCompleteJobCommandHandler(), c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateInitiatePaymentCommandHandler() commands.InitiatePaymentCommandHandler {
	return commands.NewInitiatePaymentCommandHandler(
		c.paymentUoWFactory(), c.mpesaClient, c.dispatcher, c.clock, c.cfg.Mpesa.ChargeTimeout, c.logger)
}

func (c *CompositionRoot) CreateReconcilePaymentCommandHandler() commands.ReconcilePaymentCommandHandler {
	return commands.NewReconcilePaymentCommandHandler(c.paymentUoWFactory(), c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreatePollPaymentsCommandHandler() commands.PollPaymentsCommandHandler {
	return commands.NewPollPaymentsCommandHandler(
		c.paymentUoWFactory(), c.mpesaClient, c.CreateReconcilePaymentCommandHandler(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateExpireStalePaymentsCommandHandler() commands.ExpireStalePaymentsCommandHandler {
	return commands.NewExpireStalePaymentsCommandHandler(c.paymentUoWFactory(), c.dispatcher, c.clock)
}

func (c *CompositionRoot) CreateGetJobQueryHandler() queries.GetJobQueryHandler {
	return queries.NewGetJobQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListClientJobsQueryHandler() queries.ListClientJobsQueryHandler {
	return queries.NewListClientJobsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListCleanerJobsQueryHandler() queries.ListCleanerJobsQueryHandler {
	return queries.NewListCleanerJobsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListAvailableJobsQueryHandler() queries.ListAvailableJobsQueryHandler {
	return queries.NewListAvailableJobsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTrackingStatusQueryHandler() queries.GetTrackingStatusQueryHandler {
	return queries.NewGetTrackingStatusQueryHandler(c.trackingStore, c.gormDB, c.clock)
}

func (c *CompositionRoot) CreateFindMatchesForJobQueryHandler() queries.FindMatchesForJobQueryHandler {
	return queries.NewFindMatchesForJobQueryHandler(c.uowFactory, c.engine, c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateSuggestJobsForCleanerQueryHandler() queries.SuggestJobsForCleanerQueryHandler {
	return queries.NewSuggestJobsForCleanerQueryHandler(c.uowFactory, c.engine)
}

func (c *CompositionRoot) CreateGetPaymentQueryHandler() queries.GetPaymentQueryHandler {
	return queries.NewGetPaymentQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListJobPaymentsQueryHandler() queries.ListJobPaymentsQueryHandler {
	return queries.NewListJobPaymentsQueryHandler(c.gormDB)
}

// HTTPHandlers collects the use cases served over HTTP.
func (c *CompositionRoot) HTTPHandlers() httpadapter.Handlers {
	return httpadapter.Handlers{
		CreateJob:        c.CreateCreateJobCommandHandler(),
		ProposeSlot:      c.CreateProposeSlotCommandHandler(),
		AcceptSlot:       c.CreateAcceptSlotCommandHandler(),
		RejectSlot:       c.CreateRejectSlotCommandHandler(),
		AssignCleaner:    c.CreateAssignCleanerCommandHandler(),
		StartJob:         c.CreateStartJobCommandHandler(),
		CompleteJob:      c.CreateCompleteJobCommandHandler(),
		CancelJob:        c.CreateCancelJobCommandHandler(),
		MarkJobPaid:      c.CreateMarkJobPaidCommandHandler(),
		PauseTracking:    c.CreatePauseTrackingCommandHandler(),
		ResumeTracking:   c.CreateResumeTrackingCommandHandler(),
		StopTracking:     c.CreateStopTrackingCommandHandler(),
		InitiatePayment:  c.CreateInitiatePaymentCommandHandler(),
		ReconcilePayment: c.CreateReconcilePaymentCommandHandler(),

		GetJob:            c.CreateGetJobQueryHandler(),
		ListClientJobs:    c.CreateListClientJobsQueryHandler(),
		ListCleanerJobs:   c.CreateListCleanerJobsQueryHandler(),
		ListAvailableJobs: c.CreateListAvailableJobsQueryHandler(),
		GetTrackingStatus: c.CreateGetTrackingStatusQueryHandler(),
		FindMatches:       c.CreateFindMatchesForJobQueryHandler(),
		SuggestJobs:       c.CreateSuggestJobsForCleanerQueryHandler(),
		GetPayment:        c.CreateGetPaymentQueryHandler(),
		ListJobPayments:   c.CreateListJobPaymentsQueryHandler(),

		HealthChecks: c.healthChecks(),
	}
}

func (c *CompositionRoot) healthChecks() map[string]httpadapter.HealthCheck {
	checks := map[string]httpadapter.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.gormDB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"mpesa": func(context.Context) error {
			if state := c.mpesaClient.State(); state == gobreaker.StateOpen.String() {
				return fmt.Errorf("circuit breaker is %s", state)
			}
			return nil
		},
	}
	if c.rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.rdb.Ping(ctx).Err()
		}
	}
	return checks
}

// JobManager builds the payment background jobs.
func (c *CompositionRoot) JobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreatePollPaymentsCommandHandler(),
		c.CreateExpireStalePaymentsCommandHandler(),
		jobs.Config{
			PollSchedule:   c.cfg.PaymentPollSchedule,
			PollOlderThan:  c.cfg.PaymentPollOlderThan,
			ExpirySchedule: c.cfg.PaymentExpirySchedule,
			ExpiryWindow:   c.cfg.PaymentExpiry,
			BatchSize:      c.cfg.PaymentJobBatchSize,
			RunTimeout:     time.Minute,
		},
		c.logger,
	)
}

type FuncJobUoWFactory func() commands.JobUoW

func (f FuncJobUoWFactory) Create() commands.JobUoW {
	return f()
}

type FuncSchedulingUoWFactory func() commands.SchedulingUoW

func (f FuncSchedulingUoWFactory) Create() commands.SchedulingUoW {
	return f()
}

type FuncPaymentUoWFactory func() commands.PaymentUoW

func (f FuncPaymentUoWFactory) Create() commands.PaymentUoW {
	return f()
}
