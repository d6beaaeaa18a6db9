package job

import (
	"time"

	"cleaning/internal/core/domain/model/kernel"
)

// LifecycleEvent records one status transition. Events are collected by the aggregate
// and published by the application layer after the transaction commits.
type LifecycleEvent struct {
	JobID      kernel.UUID
	ClientID   kernel.UUID
	CleanerID  *kernel.UUID
	From       Status
	To         Status
	ActorID    kernel.UUID
	OccurredAt time.Time
}

// Name is the routing key used by the notification publisher.
func (e LifecycleEvent) Name() string {
	return "job." + statusEventSuffix(e.To)
}

func statusEventSuffix(s Status) string {
	switch s {
	case Pending:
		return "created"
	case Scheduled:
		return "scheduled"
	case InProgress:
		return "started"
	case Completed:
		return "completed"
	case Paid:
		return "paid"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}
