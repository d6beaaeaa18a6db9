package ports

import "context"

// Event is a notification about a state change that already committed.
type Event interface {
	Name() string
}

// EventPublisher delivers events on a best-effort basis. Publish never blocks on the
// downstream transport and never fails the caller.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
