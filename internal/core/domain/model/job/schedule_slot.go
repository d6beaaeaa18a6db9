package job

import (
	"errors"
	"fmt"
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

// Acceptance is the tri-state decision on a proposed slot.
type Acceptance int

const (
	AcceptanceUnknown Acceptance = iota
	AcceptancePending
	AcceptanceAccepted
	AcceptanceRejected
)

func (a Acceptance) String() string {
	switch a {
	case AcceptancePending:
		return "PENDING"
	case AcceptanceAccepted:
		return "ACCEPTED"
	case AcceptanceRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

func (a Acceptance) Validate() error {
	if a < AcceptancePending || a > AcceptanceRejected {
		return errs.NewValueIsInvalidErrorWithCause("acceptance is invalid", fmt.Errorf("%d is not a valid acceptance", a))
	}
	return nil
}

var ErrScheduleSlotIsNotConstructed = errors.New("ScheduleSlot must be created via NewScheduleSlot constructor")

// ScheduleSlot is a proposed time window for performing a job. It belongs to exactly one
// Job and is only mutated through the owning aggregate. An accepted slot is immutable.
type ScheduleSlot struct {
	id                kernel.UUID
	jobID             kernel.UUID
	proposerID        kernel.UUID
	window            kernel.TimeWindow
	proposedByCleaner bool
	acceptance        Acceptance
	createdAt         time.Time
	guard             guard.ConstructorGuard
}

// NewScheduleSlot creates a pending slot.
func NewScheduleSlot(
	id, jobID, proposerID kernel.UUID,
	window kernel.TimeWindow,
	proposedByCleaner bool,
	createdAt time.Time,
) (*ScheduleSlot, error) {
	return RestoreScheduleSlot(id, jobID, proposerID, window, proposedByCleaner, AcceptancePending, createdAt)
}

// RestoreScheduleSlot rebuilds a slot from storage with its persisted acceptance.
func RestoreScheduleSlot(
	id, jobID, proposerID kernel.UUID,
	window kernel.TimeWindow,
	proposedByCleaner bool,
	acceptance Acceptance,
	createdAt time.Time,
) (*ScheduleSlot, error) {
	if err := errors.Join(
		id.Validate(),
		jobID.Validate(),
		proposerID.Validate(),
		acceptance.Validate(),
	); err != nil {
		return nil, err
	}
	if window.Start().IsZero() {
		return nil, errs.NewValueIsRequiredError("window")
	}

	return &ScheduleSlot{
		id:                id,
		jobID:             jobID,
		proposerID:        proposerID,
		window:            window,
		proposedByCleaner: proposedByCleaner,
		acceptance:        acceptance,
		createdAt:         createdAt,
		guard:             guard.NewConstructorGuard(),
	}, nil
}

func (s *ScheduleSlot) Validate() error {
	if s == nil {
		return ErrScheduleSlotIsNotConstructed
	}
	return s.guard.Validate(ErrScheduleSlotIsNotConstructed)
}

func (s *ScheduleSlot) ID() kernel.UUID {
	return s.id
}

func (s *ScheduleSlot) JobID() kernel.UUID {
	return s.jobID
}

func (s *ScheduleSlot) ProposerID() kernel.UUID {
	return s.proposerID
}

func (s *ScheduleSlot) Window() kernel.TimeWindow {
	return s.window
}

func (s *ScheduleSlot) Start() time.Time {
	return s.window.Start()
}

func (s *ScheduleSlot) End() time.Time {
	return s.window.End()
}

func (s *ScheduleSlot) ProposedByCleaner() bool {
	return s.proposedByCleaner
}

func (s *ScheduleSlot) Acceptance() Acceptance {
	return s.acceptance
}

func (s *ScheduleSlot) CreatedAt() time.Time {
	return s.createdAt
}

func (s *ScheduleSlot) IsAccepted() bool {
	return s.acceptance == AcceptanceAccepted
}

func (s *ScheduleSlot) IsPending() bool {
	return s.acceptance == AcceptancePending
}

func (s *ScheduleSlot) accept() error {
	if s.acceptance != AcceptancePending {
		return errs.NewStatusTransitionError("slot", s.acceptance.String(), AcceptanceAccepted.String())
	}
	s.acceptance = AcceptanceAccepted
	return nil
}

func (s *ScheduleSlot) reject() error {
	if s.acceptance != AcceptancePending {
		return errs.NewStatusTransitionError("slot", s.acceptance.String(), AcceptanceRejected.String())
	}
	s.acceptance = AcceptanceRejected
	return nil
}
