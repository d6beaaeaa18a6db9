package commands

import (
	"context"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/core/ports"
	"cleaning/internal/pkg/clock"
	"cleaning/internal/pkg/errs"
)

// PauseTrackingCommandHandler pauses a running session. Only the session's cleaner may pause it.
type PauseTrackingCommandHandler struct {
	store     ports.TrackingStore
	publisher ports.EventPublisher
	clock     clock.Clock
}

func NewPauseTrackingCommandHandler(
	store ports.TrackingStore,
	publisher ports.EventPublisher,
	clk clock.Clock,
) PauseTrackingCommandHandler {
	return PauseTrackingCommandHandler{store: store, publisher: publisher, clock: clk}
}

func (h PauseTrackingCommandHandler) Handle(ctx context.Context, cmd PauseTrackingCommand) (tracking.Status, error) {
	if err := cmd.Validate(); err != nil {
		return tracking.Status{}, err
	}
	now := h.clock.Now()

	session, err := h.store.Modify(ctx, cmd.JobID(), func(s *tracking.Session) error {
		if err := ensureSessionOwner(s, cmd.CleanerID(), "pause tracking"); err != nil {
			return err
		}
		return s.Pause(cmd.Reason(), now)
	})
	if err != nil {
		return tracking.Status{}, err
	}

	h.publisher.Publish(ctx, tracking.NewEvent(tracking.EventPaused, session, now))
	return session.Status(now), nil
}

// ResumeTrackingCommandHandler resumes a paused session and shifts its expected end.
type ResumeTrackingCommandHandler struct {
	store     ports.TrackingStore
	publisher ports.EventPublisher
	clock     clock.Clock
}

func NewResumeTrackingCommandHandler(
	store ports.TrackingStore,
	publisher ports.EventPublisher,
	clk clock.Clock,
) ResumeTrackingCommandHandler {
	return ResumeTrackingCommandHandler{store: store, publisher: publisher, clock: clk}
}

func (h ResumeTrackingCommandHandler) Handle(ctx context.Context, cmd ResumeTrackingCommand) (tracking.Status, error) {
	if err := cmd.Validate(); err != nil {
		return tracking.Status{}, err
	}
	now := h.clock.Now()

	session, err := h.store.Modify(ctx, cmd.JobID(), func(s *tracking.Session) error {
		if err := ensureSessionOwner(s, cmd.CleanerID(), "resume tracking"); err != nil {
			return err
		}
		return s.Resume(now)
	})
	if err != nil {
		return tracking.Status{}, err
	}

	h.publisher.Publish(ctx, tracking.NewEvent(tracking.EventResumed, session, now))
	return session.Status(now), nil
}

// StopTrackingCommandHandler stops the clock and completes the job with the tracked minutes.
// The session is only discarded once the job completion has committed, so a failed
// completion leaves the session running and the stop can be retried.
type StopTrackingCommandHandler struct {
	store     ports.TrackingStore
	completer CompleteJobCommandHandler
	publisher ports.EventPublisher
	clock     clock.Clock
}

func NewStopTrackingCommandHandler(
	store ports.TrackingStore,
	completer CompleteJobCommandHandler,
	publisher ports.EventPublisher,
	clk clock.Clock,
) StopTrackingCommandHandler {
	return StopTrackingCommandHandler{store: store, completer: completer, publisher: publisher, clock: clk}
}

func (h StopTrackingCommandHandler) Handle(ctx context.Context, cmd StopTrackingCommand) (CompleteJobResult, error) {
	if err := cmd.Validate(); err != nil {
		return CompleteJobResult{}, err
	}
	now := h.clock.Now()

	session, err := h.store.Get(ctx, cmd.JobID())
	if err != nil {
		return CompleteJobResult{}, err
	}
	if err = ensureSessionOwner(session, cmd.CleanerID(), "stop tracking"); err != nil {
		return CompleteJobResult{}, err
	}

	minutes, err := session.Stop(now)
	if err != nil {
		return CompleteJobResult{}, err
	}

	complete, err := NewCompleteJobCommand(cmd.JobID(), cmd.CleanerID(), minutes)
	if err != nil {
		return CompleteJobResult{}, err
	}
	result, err := h.completer.Handle(ctx, complete)
	if err != nil {
		return CompleteJobResult{}, err
	}

	h.publisher.Publish(ctx, tracking.NewEvent(tracking.EventStopped, session, now))
	return result, nil
}

func ensureSessionOwner(s *tracking.Session, cleanerID kernel.UUID, action string) error {
	if !s.CleanerID.IsEqual(cleanerID) {
		return errs.NewNotAuthorizedError(cleanerID.String(), action)
	}
	return nil
}
