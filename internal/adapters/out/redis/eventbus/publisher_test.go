package eventbus_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cleaning/internal/adapters/out/redis/eventbus"
	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/domain/services"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var at = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

type unknownEvent struct{}

func (unknownEvent) Name() string { return "unknown" }

func TestToMessage(t *testing.T) {
	jobID := kernel.NewUUID()
	clientID := kernel.NewUUID()
	cleanerID := kernel.NewUUID()
	amount, _ := kernel.NewMoney(156000)

	t.Run("lifecycle event goes to client and cleaner", func(t *testing.T) {
		msg, err := eventbus.ToMessage(job.LifecycleEvent{
			JobID: jobID, ClientID: clientID, CleanerID: &cleanerID,
			From: job.Scheduled, To: job.InProgress, ActorID: cleanerID, OccurredAt: at,
		})
		require.NoError(t, err)
		assert.Equal(t, "job.started", msg.Event)
		assert.Equal(t, []string{clientID.String(), cleanerID.String()}, msg.Recipients)
		assert.Equal(t, "IN_PROGRESS", msg.Data["to"])
		assert.Equal(t, at, msg.OccurredAt)
	})

	t.Run("pending job has no cleaner recipient", func(t *testing.T) {
		msg, err := eventbus.ToMessage(job.LifecycleEvent{JobID: jobID, ClientID: clientID, To: job.Pending, OccurredAt: at})
		require.NoError(t, err)
		assert.Equal(t, "job.created", msg.Event)
		assert.Equal(t, []string{clientID.String()}, msg.Recipients)
	})

	t.Run("tracking pause carries the reason", func(t *testing.T) {
		msg, err := eventbus.ToMessage(tracking.Event{
			Type: tracking.EventPaused, JobID: jobID, CleanerID: cleanerID, Reason: "supplies",
			Minutes: 30, ExpectedEnd: at.Add(2 * time.Hour), OccurredAt: at,
		})
		require.NoError(t, err)
		assert.Equal(t, "tracking.paused", msg.Event)
		assert.Equal(t, "supplies", msg.Data["reason"])
		assert.Equal(t, "30", msg.Data["minutes"])
	})

	t.Run("settled payment goes to the payer", func(t *testing.T) {
		payerID := kernel.NewUUID()
		msg, err := eventbus.ToMessage(payment.SettledEvent{
			PaymentID: kernel.NewUUID(), JobID: jobID, PayerID: payerID, Amount: amount,
			Status: payment.Completed, Receipt: "SC23HX9KQ1", SettledAt: at,
		})
		require.NoError(t, err)
		assert.Equal(t, "payment.completed", msg.Event)
		assert.Equal(t, []string{payerID.String()}, msg.Recipients)
		assert.Equal(t, "SC23HX9KQ1", msg.Data["receipt"])
		assert.Equal(t, "KES 1560.00", msg.Data["amount"])
	})

	t.Run("match", func(t *testing.T) {
		msg, err := eventbus.ToMessage(services.MatchFoundEvent{JobID: jobID, CleanerID: cleanerID, Score: 0.91234})
		require.NoError(t, err)
		assert.Equal(t, "match.found", msg.Event)
		assert.Equal(t, "0.912", msg.Data["score"])
	})

	t.Run("unknown event", func(t *testing.T) {
		_, err := eventbus.ToMessage(unknownEvent{})
		require.Error(t, err)
	})
}

func TestPublisher_DeliverPublishesOnEventChannel(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })

	publisher := eventbus.NewPublisher(rdb, "")
	sub := rdb.Subscribe(ctx, publisher.Channel("job.paid"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	jobID := kernel.NewUUID()
	err = publisher.Deliver(ctx, job.LifecycleEvent{JobID: jobID, ClientID: kernel.NewUUID(), To: job.Paid, OccurredAt: at})
	require.NoError(t, err)

	select {
	case raw := <-sub.Channel():
		var msg eventbus.Message
		require.NoError(t, json.Unmarshal([]byte(raw.Payload), &msg))
		assert.Equal(t, "job.paid", msg.Event)
		assert.Equal(t, jobID.String(), msg.JobID)
	case <-time.After(5 * time.Second):
		t.Fatal("message not received")
	}
}
