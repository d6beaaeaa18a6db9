// Package eventbus publishes domain events to Redis pub/sub channels, one channel per
// event name. The notification service subscribes and fans out to users.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/payment"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

const DefaultChannelPrefix = "cleaning.events."

// Message is the wire form of an event.
type Message struct {
	Event      string            `json:"event"`
	JobID      string            `json:"job_id,omitempty"`
	Recipients []string          `json:"recipients"`
	Data       map[string]string `json:"data,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Publisher implements notifier.Sink.
type Publisher struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewPublisher(rdb redis.UniversalClient, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &Publisher{rdb: rdb, prefix: prefix}
}

func (p *Publisher) Channel(eventName string) string {
	return p.prefix + eventName
}

func (p *Publisher) Deliver(ctx context.Context, event ports.Event) error {
	msg, err := ToMessage(event)
	if err != nil {
		return backoff.Permanent(err)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return backoff.Permanent(err)
	}
	return p.rdb.Publish(ctx, p.Channel(msg.Event), payload).Err()
}

// ToMessage maps the events this service emits to their wire form.
func ToMessage(event ports.Event) (Message, error) {
	switch e := event.(type) {
	case job.LifecycleEvent:
		recipients := []string{e.ClientID.String()}
		if e.CleanerID != nil {
			recipients = append(recipients, e.CleanerID.String())
		}
		return Message{
			Event:      e.Name(),
			JobID:      e.JobID.String(),
			Recipients: recipients,
			Data: map[string]string{
				"from":     e.From.String(),
				"to":       e.To.String(),
				"actor_id": e.ActorID.String(),
			},
			OccurredAt: e.OccurredAt,
		}, nil

	case tracking.Event:
		data := map[string]string{
			"minutes":      fmt.Sprint(e.Minutes),
			"expected_end": e.ExpectedEnd.Format(time.RFC3339),
		}
		if e.Reason != "" {
			data["reason"] = e.Reason
		}
		return Message{
			Event:      e.Name(),
			JobID:      e.JobID.String(),
			Recipients: []string{e.CleanerID.String()},
			Data:       data,
			OccurredAt: e.OccurredAt,
		}, nil

	case payment.SettledEvent:
		data := map[string]string{
			"payment_id": e.PaymentID.String(),
			"amount":     e.Amount.String(),
			"status":     e.Status.String(),
		}
		if e.Receipt != "" {
			data["receipt"] = e.Receipt
		}
		if e.Reason != "" {
			data["reason"] = e.Reason
		}
		return Message{
			Event:      e.Name(),
			JobID:      e.JobID.String(),
			Recipients: []string{e.PayerID.String()},
			Data:       data,
			OccurredAt: e.SettledAt,
		}, nil

	case services.MatchFoundEvent:
		return Message{
			Event:      e.Name(),
			JobID:      e.JobID.String(),
			Recipients: []string{e.CleanerID.String()},
			Data:       map[string]string{"score": fmt.Sprintf("%.3f", e.Score)},
			OccurredAt: time.Now().UTC(),
		}, nil

	default:
		return Message{}, fmt.Errorf("unsupported event %T (%s)", event, event.Name())
	}
}
