package jobrepo_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "cleaning/internal/adapters/out/postgres"
	"cleaning/internal/adapters/out/postgres/jobrepo"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)

type JobRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *jobrepo.GormJobRepository
}

func (suite *JobRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.repository = jobrepo.NewGormJobRepository(db)
}

func (suite *JobRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE schedule_slots, jobs").Error)
}

func (suite *JobRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *JobRepositoryIntegrationTestSuite) TestAddAndGet_RoundTripsEveryField() {
	ctx := context.Background()
	j := suite.newJob(now)
	slot := suite.propose(j, j.ClientID(), false, now.Add(26*time.Hour))

	suite.Require().NoError(suite.repository.Add(ctx, j))

	got, err := suite.repository.Get(ctx, j.ID())
	suite.Require().NoError(err)
	suite.True(got.ID().IsEqual(j.ID()))
	suite.True(got.ClientID().IsEqual(j.ClientID()))
	suite.Equal(job.Pending, got.Status())
	suite.Nil(got.CleanerID())
	suite.Equal("Westlands", got.Location().City())
	suite.InDelta(-1.2634, got.Location().Latitude(), 1e-9)
	suite.Equal("two bedrooms, windows", got.Description())
	suite.Equal(120, got.EstimatedMinutes())
	suite.Equal(int64(1000), got.RatePerMinute().Minor())
	suite.Equal(int64(120000), got.BaseCost().Minor())
	suite.True(got.CreatedAt().Equal(now))
	suite.Equal(0, got.Version())

	suite.Require().Len(got.Slots(), 1)
	stored := got.Slots()[0]
	suite.True(stored.ID().IsEqual(slot.ID()))
	suite.True(stored.Start().Equal(slot.Start()))
	suite.True(stored.End().Equal(slot.End()))
	suite.False(stored.ProposedByCleaner())
	suite.Equal(job.AcceptancePending, stored.Acceptance())
}

func (suite *JobRepositoryIntegrationTestSuite) TestGet_Missing() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *JobRepositoryIntegrationTestSuite) TestUpdate_SchedulesAndUpsertsSlots() {
	ctx := context.Background()
	j := suite.newJob(now)
	cleanerID := kernel.NewUUID()
	first := suite.propose(j, cleanerID, true, now.Add(48*time.Hour))
	suite.Require().NoError(suite.repository.Add(ctx, j))

	loaded, err := suite.repository.GetForUpdate(ctx, j.ID())
	suite.Require().NoError(err)
	second := suite.propose(loaded, cleanerID, true, now.Add(26*time.Hour))
	_, err = loaded.AcceptSlot(first.ID(), loaded.ClientID())
	suite.Require().NoError(err)
	suite.Require().NoError(loaded.Assign(cleanerID, first.ID(), loaded.ClientID(), now.Add(time.Minute)))
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	got, err := suite.repository.Get(ctx, j.ID())
	suite.Require().NoError(err)
	suite.Equal(job.Scheduled, got.Status())
	suite.Require().NotNil(got.CleanerID())
	suite.True(got.CleanerID().IsEqual(cleanerID))
	suite.Require().NotNil(got.ScheduledFor())
	suite.True(got.ScheduledFor().Equal(first.Start()))
	suite.Equal(1, got.Version())

	suite.Require().Len(got.Slots(), 2)
	suite.True(got.Slots()[0].ID().IsEqual(second.ID()), "slots are ordered by start")
	suite.Equal(job.AcceptancePending, got.Slots()[0].Acceptance())
	suite.Equal(job.AcceptanceAccepted, got.Slots()[1].Acceptance())
}

func (suite *JobRepositoryIntegrationTestSuite) TestUpdate_StaleVersion() {
	ctx := context.Background()
	j := suite.newJob(now)
	suite.Require().NoError(suite.repository.Add(ctx, j))

	a, err := suite.repository.Get(ctx, j.ID())
	suite.Require().NoError(err)
	b, err := suite.repository.Get(ctx, j.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(a.Cancel(a.ClientID(), true, "", now))
	suite.Require().NoError(suite.repository.Update(ctx, a))

	suite.Require().NoError(b.Cancel(b.ClientID(), true, "", now))
	suite.Require().ErrorIs(suite.repository.Update(ctx, b), errs.ErrVersionIsInvalid)
}

func (suite *JobRepositoryIntegrationTestSuite) TestUpdate_Missing() {
	j := suite.newJob(now)
	err := suite.repository.Update(context.Background(), j)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *JobRepositoryIntegrationTestSuite) TestSecondAcceptedSlotIsRejectedByIndex() {
	ctx := context.Background()
	j := suite.newJob(now)
	first := suite.propose(j, j.ClientID(), false, now.Add(26*time.Hour))
	second := suite.propose(j, j.ClientID(), false, now.Add(50*time.Hour))
	suite.Require().NoError(suite.repository.Add(ctx, j))

	accept := func(id kernel.UUID) error {
		return suite.db.Model(&jobrepo.SlotDTO{}).
			Where("id = ?", id.Bytes()).
			Update("acceptance", int(job.AcceptanceAccepted)).Error
	}
	suite.Require().NoError(accept(first.ID()))
	suite.Require().Error(accept(second.ID()))
}

func (suite *JobRepositoryIntegrationTestSuite) TestListCommitments_OnlyLiveAssignments() {
	ctx := context.Background()
	cleanerID := kernel.NewUUID()

	scheduled := suite.scheduledJob(cleanerID, now.Add(26*time.Hour))
	suite.Require().NoError(suite.repository.Add(ctx, scheduled))

	canceled := suite.scheduledJob(cleanerID, now.Add(50*time.Hour))
	suite.Require().NoError(canceled.Cancel(canceled.ClientID(), true, "", now))
	suite.Require().NoError(suite.repository.Add(ctx, canceled))

	other := suite.scheduledJob(kernel.NewUUID(), now.Add(26*time.Hour))
	suite.Require().NoError(suite.repository.Add(ctx, other))

	commitments, err := suite.repository.ListCommitments(ctx, cleanerID)
	suite.Require().NoError(err)
	suite.Require().Len(commitments, 1)
	suite.True(commitments[0].JobID.IsEqual(scheduled.ID()))
	suite.True(commitments[0].Window.Start().Equal(now.Add(26 * time.Hour)))
	suite.Equal(120*time.Minute, commitments[0].Window.Duration())
}

func (suite *JobRepositoryIntegrationTestSuite) TestListPending_OldestFirstWithPaging() {
	ctx := context.Background()
	var ids []kernel.UUID
	for i := 0; i < 3; i++ {
		j := suite.newJob(now.Add(time.Duration(i) * time.Minute))
		suite.Require().NoError(suite.repository.Add(ctx, j))
		ids = append(ids, j.ID())
	}
	suite.Require().NoError(suite.repository.Add(ctx, suite.scheduledJob(kernel.NewUUID(), now.Add(26*time.Hour))))

	page, err := suite.repository.ListPending(ctx, 2, 0)
	suite.Require().NoError(err)
	suite.Require().Len(page, 2)
	suite.True(page[0].ID().IsEqual(ids[0]))
	suite.True(page[1].ID().IsEqual(ids[1]))

	page, err = suite.repository.ListPending(ctx, 2, 2)
	suite.Require().NoError(err)
	suite.Require().Len(page, 1)
	suite.True(page[0].ID().IsEqual(ids[2]))
}

func (suite *JobRepositoryIntegrationTestSuite) newJob(createdAt time.Time) *job.Job {
	loc, err := kernel.NewLocation("Mpaka Road 4", "Westlands", -1.2634, 36.8035)
	suite.Require().NoError(err)
	rate, _ := kernel.NewMoney(1000)
	base, _ := kernel.NewMoney(120000)
	j, err := job.NewJob(kernel.NewUUID(), kernel.NewUUID(), loc, "two bedrooms, windows", 120, rate, base, createdAt)
	suite.Require().NoError(err)
	return j
}

func (suite *JobRepositoryIntegrationTestSuite) propose(
	j *job.Job, proposerID kernel.UUID, byCleaner bool, start time.Time,
) *job.ScheduleSlot {
	window, err := kernel.WindowFrom(start, j.EstimatedMinutes())
	suite.Require().NoError(err)
	slot, err := j.ProposeSlot(kernel.NewUUID(), proposerID, window, byCleaner, now)
	suite.Require().NoError(err)
	return slot
}

func (suite *JobRepositoryIntegrationTestSuite) scheduledJob(cleanerID kernel.UUID, start time.Time) *job.Job {
	j := suite.newJob(now)
	slot := suite.propose(j, cleanerID, true, start)
	_, err := j.AcceptSlot(slot.ID(), j.ClientID())
	suite.Require().NoError(err)
	suite.Require().NoError(j.Assign(cleanerID, slot.ID(), j.ClientID(), now))
	return j
}

func TestJobRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(JobRepositoryIntegrationTestSuite))
}
