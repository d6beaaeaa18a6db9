package commands_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cleaning/internal/core/application/usecases/commands"
	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.Job) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.Job), args.Error(1)
}

func (m *MockJobRepository) ListCommitments(ctx context.Context, cleanerID kernel.UUID) ([]services.Commitment, error) {
	args := m.Called(ctx, cleanerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.Commitment), args.Error(1)
}

func (m *MockJobRepository) ListPending(ctx context.Context, limit, offset int) ([]*job.Job, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*job.Job), args.Error(1)
}

type MockCleanerRepository struct{ mock.Mock }

func (m *MockCleanerRepository) Add(ctx context.Context, p *cleaner.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockCleanerRepository) Get(ctx context.Context, id kernel.UUID) (*cleaner.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cleaner.Profile), args.Error(1)
}

func (m *MockCleanerRepository) Lock(ctx context.Context, id kernel.UUID) (*cleaner.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cleaner.Profile), args.Error(1)
}

func (m *MockCleanerRepository) ListAvailable(ctx context.Context) ([]*cleaner.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*cleaner.Profile), args.Error(1)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Add(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) Get(ctx context.Context, id kernel.UUID) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) GetByCheckoutRequestID(ctx context.Context, id string) (*payment.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) HasBlockingPayment(ctx context.Context, jobID kernel.UUID) (bool, error) {
	args := m.Called(ctx, jobID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) ListActiveBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	args := m.Called(ctx, before, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*payment.Payment), args.Error(1)
}

// MockUoW satisfies every unit of work flavour used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) JobRepository() ports.JobRepository {
	args := m.Called()
	return args.Get(0).(ports.JobRepository)
}

func (m *MockUoW) CleanerRepository() ports.CleanerRepository {
	args := m.Called()
	return args.Get(0).(ports.CleanerRepository)
}

func (m *MockUoW) PaymentRepository() ports.PaymentRepository {
	args := m.Called()
	return args.Get(0).(ports.PaymentRepository)
}

type MockJobUoWFactory struct{ mock.Mock }

func (m *MockJobUoWFactory) Create() commands.JobUoW {
	args := m.Called()
	return args.Get(0).(commands.JobUoW)
}

type MockSchedulingUoWFactory struct{ mock.Mock }

func (m *MockSchedulingUoWFactory) Create() commands.SchedulingUoW {
	args := m.Called()
	return args.Get(0).(commands.SchedulingUoW)
}

type MockPaymentUoWFactory struct{ mock.Mock }

func (m *MockPaymentUoWFactory) Create() commands.PaymentUoW {
	args := m.Called()
	return args.Get(0).(commands.PaymentUoW)
}

type MockTrackingStore struct{ mock.Mock }

func (m *MockTrackingStore) Create(ctx context.Context, s *tracking.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockTrackingStore) Get(ctx context.Context, jobID kernel.UUID) (*tracking.Session, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tracking.Session), args.Error(1)
}

// Modify runs fn against the session configured in Return, like the real store would.
func (m *MockTrackingStore) Modify(
	ctx context.Context,
	jobID kernel.UUID,
	fn func(*tracking.Session) error,
) (*tracking.Session, error) {
	args := m.Called(ctx, jobID)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	s := args.Get(0).(*tracking.Session)
	if err := fn(s); err != nil {
		return nil, err
	}
	return s, nil
}

func (m *MockTrackingStore) Delete(ctx context.Context, jobID kernel.UUID) error {
	args := m.Called(ctx, jobID)
	return args.Error(0)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) RequestCharge(ctx context.Context, req ports.ChargeRequest) (ports.ChargeResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.ChargeResponse), args.Error(1)
}

func (m *MockPaymentGateway) QueryCharge(ctx context.Context, checkoutRequestID string) (ports.ChargeStatus, error) {
	args := m.Called(ctx, checkoutRequestID)
	return args.Get(0).(ports.ChargeStatus), args.Error(1)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []ports.Event
}

func (r *eventRecorder) Publish(_ context.Context, event ports.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name())
	}
	return names
}

// now is a Monday, 10:00 in Nairobi.
var now = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

var discardLogger = slog.New(slog.DiscardHandler)

var testClock = clock.Fixed(now)

func costs(t *testing.T) services.CostCalculator {
	t.Helper()
	calc, err := services.NewCostCalculator(money(t, 1000))
	require.NoError(t, err)
	return calc
}

func money(t *testing.T, minor int64) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(minor)
	require.NoError(t, err)
	return m
}

func location(t *testing.T) kernel.Location {
	t.Helper()
	loc, err := kernel.NewLocation("12 Riverside Drive", "Nairobi", -1.27, 36.80)
	require.NoError(t, err)
	return loc
}

// pendingJob is a 120 minute job at 10 KES per minute created two hours before now.
func pendingJob(t *testing.T, clientID kernel.UUID) *job.Job {
	t.Helper()
	j, err := job.NewJob(kernel.NewUUID(), clientID, location(t), "two bedroom flat", 120,
		money(t, 1000), money(t, 120000), now.Add(-2*time.Hour))
	require.NoError(t, err)
	j.PullEvents()
	return j
}

// proposedSlot adds a pending slot starting at start, proposed two hours before now.
func proposedSlot(t *testing.T, j *job.Job, proposerID kernel.UUID, byCleaner bool, start time.Time) *job.ScheduleSlot {
	t.Helper()
	window, err := kernel.WindowFrom(start, j.EstimatedMinutes())
	require.NoError(t, err)
	slot, err := j.ProposeSlot(kernel.NewUUID(), proposerID, window, byCleaner, now.Add(-2*time.Hour))
	require.NoError(t, err)
	return slot
}

// scheduledJob is assigned to cleanerID for a slot starting exactly at now.
func scheduledJob(t *testing.T, clientID, cleanerID kernel.UUID) *job.Job {
	t.Helper()
	j := pendingJob(t, clientID)
	slot := proposedSlot(t, j, clientID, false, now)
	_, err := j.AcceptSlot(slot.ID(), clientID)
	require.NoError(t, err)
	require.NoError(t, j.Assign(cleanerID, slot.ID(), clientID, now.Add(-2*time.Hour)))
	j.PullEvents()
	return j
}

func inProgressJob(t *testing.T, clientID, cleanerID kernel.UUID) *job.Job {
	t.Helper()
	j := scheduledJob(t, clientID, cleanerID)
	require.NoError(t, j.Start(cleanerID, now))
	j.PullEvents()
	return j
}

func completedJob(t *testing.T, clientID, cleanerID kernel.UUID, finalCost int64) *job.Job {
	t.Helper()
	j := inProgressJob(t, clientID, cleanerID)
	require.NoError(t, j.Complete(cleanerID, 150, money(t, finalCost), now.Add(150*time.Minute)))
	j.PullEvents()
	return j
}

func activeCleaner(t *testing.T, id kernel.UUID) *cleaner.Profile {
	t.Helper()
	p, err := cleaner.NewProfile(id, "Wanjiku", money(t, 60000), 4.5, 40, 42, true, true)
	require.NoError(t, err)
	return p
}

func processingPayment(t *testing.T, j *job.Job, checkoutID string) *payment.Payment {
	t.Helper()
	p, err := payment.NewPayment(kernel.NewUUID(), j.ID(), j.ClientID(), *j.FinalCost(), "254712345678",
		"REF000000001", now)
	require.NoError(t, err)
	require.NoError(t, p.MarkProcessing(checkoutID, "merchant-1", now))
	return p
}

// expectTx registers Begin, Commit and the deferred Rollback on uow.
func expectTx(ctx context.Context, uow *MockUoW) {
	uow.On("Begin", ctx).Return(nil)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil)
}
