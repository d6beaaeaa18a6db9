package paymentrepo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	postgres_adapter "cleaning/internal/adapters/out/postgres"
	"cleaning/internal/adapters/out/postgres/paymentrepo"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var now = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

type PaymentRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *paymentrepo.GormPaymentRepository
	seq        int
}

func (suite *PaymentRepositoryIntegrationTestSuite) SetupSuite() {
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
	suite.repository = paymentrepo.NewGormPaymentRepository(db)
}

func (suite *PaymentRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE payments").Error)
}

func (suite *PaymentRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestLifecycle_PersistsMetadataAndReceipt() {
	ctx := context.Background()
	p := suite.newPayment(kernel.NewUUID(), now)
	suite.Require().NoError(suite.repository.Add(ctx, p))

	loaded, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(payment.Pending, loaded.Status())
	suite.Empty(loaded.Metadata())

	suite.Require().NoError(loaded.MarkProcessing("ws_CO_020320261200001", "29115-3462-1", now.Add(time.Second)))
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	loaded, err = suite.repository.GetByCheckoutRequestID(ctx, "ws_CO_020320261200001")
	suite.Require().NoError(err)
	suite.True(loaded.ID().IsEqual(p.ID()))
	suite.Equal(payment.Processing, loaded.Status())
	suite.Equal(1, loaded.Version())

	details := map[string]string{
		payment.MetaResultCode:      "0",
		payment.MetaTransactionDate: "20260302120105",
	}
	suite.Require().NoError(loaded.Complete("SC23HX9KQ1", details, now.Add(time.Minute)))
	suite.Require().NoError(suite.repository.Update(ctx, loaded))

	got, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(payment.Completed, got.Status())
	suite.Require().NotNil(got.ProviderReference())
	suite.Equal("SC23HX9KQ1", *got.ProviderReference())
	suite.Require().NotNil(got.CompletedAt())
	suite.True(got.CompletedAt().Equal(now.Add(time.Minute)))
	suite.Equal("ws_CO_020320261200001", got.CheckoutRequestID())
	suite.Equal("29115-3462-1", got.Metadata()[payment.MetaMerchantRequestID])
	suite.Equal("20260302120105", got.Metadata()[payment.MetaTransactionDate])
	suite.Equal(int64(120000), got.Amount().Minor())
	suite.Equal("254712345678", got.PhoneNumber())
	suite.Equal(2, got.Version())
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestGetByCheckoutRequestID_Unknown() {
	_, err := suite.repository.GetByCheckoutRequestID(context.Background(), "ws_CO_missing")
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	_, err = suite.repository.GetByCheckoutRequestID(context.Background(), "")
	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestUpdate_StaleVersion() {
	ctx := context.Background()
	p := suite.newPayment(kernel.NewUUID(), now)
	suite.Require().NoError(suite.repository.Add(ctx, p))

	a, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	b, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(a.Fail(payment.FailureReasonExpired, nil, now))
	suite.Require().NoError(suite.repository.Update(ctx, a))

	suite.Require().NoError(b.MarkProcessing("ws_CO_late", "", now))
	suite.Require().ErrorIs(suite.repository.Update(ctx, b), errs.ErrVersionIsInvalid)

	got, err := suite.repository.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(payment.Failed, got.Status())
	suite.Equal(payment.FailureReasonExpired, got.FailureReason())
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestDuplicateReferenceIsRejected() {
	ctx := context.Background()
	first := suite.newPayment(kernel.NewUUID(), now)
	suite.Require().NoError(suite.repository.Add(ctx, first))

	amount, _ := kernel.NewMoney(5000)
	clash, err := payment.NewPayment(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		amount, "254712345678", first.Reference(), now)
	suite.Require().NoError(err)
	suite.Require().Error(suite.repository.Add(ctx, clash))
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestHasBlockingPayment() {
	ctx := context.Background()
	jobID := kernel.NewUUID()

	blocked, err := suite.repository.HasBlockingPayment(ctx, jobID)
	suite.Require().NoError(err)
	suite.False(blocked)

	failed := suite.newPayment(jobID, now)
	suite.Require().NoError(failed.Fail("declined", nil, now))
	suite.Require().NoError(suite.repository.Add(ctx, failed))

	blocked, err = suite.repository.HasBlockingPayment(ctx, jobID)
	suite.Require().NoError(err)
	suite.False(blocked, "failed payments allow a retry")

	suite.Require().NoError(suite.repository.Add(ctx, suite.newPayment(jobID, now)))
	blocked, err = suite.repository.HasBlockingPayment(ctx, jobID)
	suite.Require().NoError(err)
	suite.True(blocked)
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestListActiveBefore() {
	ctx := context.Background()

	oldPending := suite.newPayment(kernel.NewUUID(), now.Add(-40*time.Minute))
	suite.Require().NoError(suite.repository.Add(ctx, oldPending))

	oldProcessing := suite.newPayment(kernel.NewUUID(), now.Add(-50*time.Minute))
	suite.Require().NoError(oldProcessing.MarkProcessing("ws_CO_old", "", now.Add(-35*time.Minute)))
	suite.Require().NoError(suite.repository.Add(ctx, oldProcessing))

	recent := suite.newPayment(kernel.NewUUID(), now.Add(-5*time.Minute))
	suite.Require().NoError(suite.repository.Add(ctx, recent))

	settled := suite.newPayment(kernel.NewUUID(), now.Add(-60*time.Minute))
	suite.Require().NoError(settled.Fail("declined", nil, now.Add(-55*time.Minute)))
	suite.Require().NoError(suite.repository.Add(ctx, settled))

	list, err := suite.repository.ListActiveBefore(ctx, now.Add(-30*time.Minute), 10)
	suite.Require().NoError(err)
	suite.Require().Len(list, 2)
	suite.True(list[0].ID().IsEqual(oldPending.ID()), "ordered by last update")
	suite.True(list[1].ID().IsEqual(oldProcessing.ID()))

	list, err = suite.repository.ListActiveBefore(ctx, now.Add(-30*time.Minute), 1)
	suite.Require().NoError(err)
	suite.Len(list, 1)
}

func (suite *PaymentRepositoryIntegrationTestSuite) TestListActiveBefore_SkipsRowsHeldByCallback() {
	ctx := context.Background()

	stale := suite.newPayment(kernel.NewUUID(), now.Add(-40*time.Minute))
	suite.Require().NoError(suite.repository.Add(ctx, stale))

	settling := suite.newPayment(kernel.NewUUID(), now.Add(-50*time.Minute))
	suite.Require().NoError(settling.MarkProcessing("ws_CO_settling", "", now.Add(-45*time.Minute)))
	suite.Require().NoError(suite.repository.Add(ctx, settling))

	callback := suite.db.Begin()
	suite.Require().NoError(callback.Error)
	defer callback.Rollback()
	held, err := paymentrepo.NewGormPaymentRepository(callback).GetByCheckoutRequestID(ctx, "ws_CO_settling")
	suite.Require().NoError(err)
	suite.True(held.ID().IsEqual(settling.ID()))

	sweep := suite.db.Begin()
	suite.Require().NoError(sweep.Error)
	defer sweep.Rollback()
	list, err := paymentrepo.NewGormPaymentRepository(sweep).ListActiveBefore(ctx, now.Add(-30*time.Minute), 10)

	suite.Require().NoError(err)
	suite.Require().Len(list, 1)
	suite.True(list[0].ID().IsEqual(stale.ID()))
}

func (suite *PaymentRepositoryIntegrationTestSuite) newPayment(jobID kernel.UUID, at time.Time) *payment.Payment {
	suite.seq++
	amount, _ := kernel.NewMoney(120000)
	p, err := payment.NewPayment(kernel.NewUUID(), jobID, kernel.NewUUID(), amount,
		"254712345678", fmt.Sprintf("REF%09d", suite.seq), at)
	suite.Require().NoError(err)
	return p
}

func TestPaymentRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(PaymentRepositoryIntegrationTestSuite))
}
