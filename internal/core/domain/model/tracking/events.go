package tracking

import (
	"time"

	"cleaning/internal/core/domain/model/kernel"
)

const (
	EventStarted = "tracking.started"
	EventPaused  = "tracking.paused"
	EventResumed = "tracking.resumed"
	EventStopped = "tracking.stopped"
)

// Event is published after a session changes state, for client notifications.
type Event struct {
	Type        string
	JobID       kernel.UUID
	CleanerID   kernel.UUID
	Reason      string
	Minutes     int
	ExpectedEnd time.Time
	OccurredAt  time.Time
}

func (e Event) Name() string {
	return e.Type
}

// NewEvent snapshots the session for an event of the given type.
func NewEvent(eventType string, s *Session, now time.Time) Event {
	return Event{
		Type:        eventType,
		JobID:       s.JobID,
		CleanerID:   s.CleanerID,
		Reason:      s.PauseReason,
		Minutes:     roundMinutes(s.Worked(now)),
		ExpectedEnd: s.ExpectedEnd,
		OccurredAt:  now,
	}
}
