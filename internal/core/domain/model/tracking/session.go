package tracking

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
)

var (
	// ErrNoActiveSession is returned when a job has no Running or Paused session.
	ErrNoActiveSession = errors.New("no active tracking session")
	// ErrCleanerBusy is returned when the cleaner already works on another job.
	ErrCleanerBusy = fmt.Errorf("%w: cleaner already has an active tracking session", errs.ErrConflict)
	// ErrSessionExists is returned when the job already has an active session.
	ErrSessionExists = fmt.Errorf("%w: job already has an active tracking session", errs.ErrConflict)
	// ErrOutsideWorkWindow is returned when work starts outside business hours or too far
	// from the scheduled time.
	ErrOutsideWorkWindow = errors.New("job cannot be started at this time")
)

// Session is the ephemeral work session of one job. Durations are measured in wall
// clock time with paused intervals excluded.
type Session struct {
	JobID            kernel.UUID
	CleanerID        kernel.UUID
	State            State
	StartedAt        time.Time
	ExpectedEnd      time.Time
	EstimatedMinutes int
	PausedTotal      time.Duration
	PausedAt         *time.Time
	PauseReason      string
	StoppedAt        *time.Time
}

// Start opens a Running session whose expected end is now + estimatedMinutes.
func Start(jobID, cleanerID kernel.UUID, estimatedMinutes int, now time.Time) (*Session, error) {
	if err := errors.Join(jobID.Validate(), cleanerID.Validate()); err != nil {
		return nil, err
	}
	if estimatedMinutes <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("estimatedMinutes", fmt.Errorf("%d is not greater than 0", estimatedMinutes))
	}
	return &Session{
		JobID:            jobID,
		CleanerID:        cleanerID,
		State:            Running,
		StartedAt:        now,
		ExpectedEnd:      now.Add(time.Duration(estimatedMinutes) * time.Minute),
		EstimatedMinutes: estimatedMinutes,
	}, nil
}

// Pause moves Running to Paused. A non-empty reason is required.
func (s *Session) Pause(reason string, now time.Time) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if s.State != Running {
		return errs.NewStatusTransitionError("tracking session", s.State.String(), Paused.String())
	}
	s.State = Paused
	s.PausedAt = &now
	s.PauseReason = reason
	return nil
}

// Resume moves Paused to Running and pushes the expected end back by the pause length.
func (s *Session) Resume(now time.Time) error {
	if s.State != Paused || s.PausedAt == nil {
		return errs.NewStatusTransitionError("tracking session", s.State.String(), Running.String())
	}
	pause := nonNegative(now.Sub(*s.PausedAt))
	s.PausedTotal += pause
	s.ExpectedEnd = s.ExpectedEnd.Add(pause)
	s.State = Running
	s.PausedAt = nil
	s.PauseReason = ""
	return nil
}

// Stop closes the session and returns the worked minutes, rounded to the nearest minute.
func (s *Session) Stop(now time.Time) (int, error) {
	if !s.State.IsActive() {
		return 0, errs.NewStatusTransitionError("tracking session", s.State.String(), Stopped.String())
	}
	if s.State == Paused {
		if err := s.Resume(now); err != nil {
			return 0, err
		}
	}
	s.State = Stopped
	s.StoppedAt = &now
	return roundMinutes(s.Worked(now)), nil
}

// Worked is elapsed wall time minus every paused interval, including an ongoing pause.
func (s *Session) Worked(now time.Time) time.Duration {
	end := now
	if s.StoppedAt != nil {
		end = *s.StoppedAt
	}
	return nonNegative(end.Sub(s.StartedAt) - s.PausedDuration(end))
}

// PausedDuration is the accumulated paused time, counting an ongoing pause up to now.
func (s *Session) PausedDuration(now time.Time) time.Duration {
	total := s.PausedTotal
	if s.State == Paused && s.PausedAt != nil {
		total += nonNegative(now.Sub(*s.PausedAt))
	}
	return total
}

// Status is the read-side view of a session.
type Status struct {
	JobID               kernel.UUID
	State               State
	StartedAt           time.Time
	CurrentMinutes      int
	PausedMinutes       int
	IsOvertime          bool
	OvertimeMinutes     int
	EstimatedCompletion time.Time
	PauseReason         string
}

// Status reports the session at now. Overtime means worked minutes exceed the estimate.
func (s *Session) Status(now time.Time) Status {
	current := roundMinutes(s.Worked(now))
	overtime := max(current-s.EstimatedMinutes, 0)
	completion := s.ExpectedEnd
	if s.State == Paused && s.PausedAt != nil {
		completion = completion.Add(nonNegative(now.Sub(*s.PausedAt)))
	}
	return Status{
		JobID:               s.JobID,
		State:               s.State,
		StartedAt:           s.StartedAt,
		CurrentMinutes:      current,
		PausedMinutes:       roundMinutes(s.PausedDuration(now)),
		IsOvertime:          current > s.EstimatedMinutes,
		OvertimeMinutes:     overtime,
		EstimatedCompletion: completion,
		PauseReason:         s.PauseReason,
	}
}

func roundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

func nonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
