package job

import (
	"fmt"
	"strings"

	"cleaning/internal/pkg/errs"
)

// Status is the lifecycle state of a job.
//
// State transitions:
//
//	Pending ──> Scheduled ──> InProgress ──> Completed ──> Paid
//	   │            │              │
//	   └────────────┴──────────────┴──> Canceled
//
// Completed, Paid and Canceled accept no other transition, except that
// Completed moves to Paid once the payment settles. Paid to Paid is an idempotent no-op.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	// Pending jobs wait for slot negotiation and a cleaner.
	Pending
	// Scheduled jobs have an accepted slot and an assigned cleaner.
	Scheduled
	// InProgress jobs have an open tracking session.
	InProgress
	// Completed jobs carry the final cost and await payment.
	Completed
	// Paid jobs were settled through the payment gateway.
	Paid
	// Canceled jobs were withdrawn by the client or the assigned cleaner.
	Canceled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Scheduled:  "SCHEDULED",
		InProgress: "IN_PROGRESS",
		Completed:  "COMPLETED",
		Paid:       "PAID",
		Canceled:   "CANCELED",
	}
}

// Validate rejects Unknown and out-of-range values read from storage or the wire.
func (s Status) Validate() error {
	if s <= Unknown || s > Canceled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// ParseStatus converts the wire representation ("IN_PROGRESS", case-insensitive) to a Status.
func ParseStatus(value string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", value))
}

// IsTerminal reports whether no lifecycle operation except MarkPaid can follow.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Paid || s == Canceled
}

// IsCommitted reports whether the job occupies its cleaner's schedule.
func (s Status) IsCommitted() bool {
	return s == Scheduled || s == InProgress
}

// ValidateCanHaveCleaner enforces: a cleaner is set iff status ∈ {Scheduled, InProgress, Completed, Paid}.
func (s Status) ValidateCanHaveCleaner(hasCleaner bool) error {
	requires := s == Scheduled || s == InProgress || s == Completed || s == Paid
	if hasCleaner && !requires {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have a cleaner", s),
		)
	}
	if !hasCleaner && requires {
		return errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no cleaner", s),
		)
	}
	return nil
}

// ValidateNegotiable reports whether slots may still be proposed or accepted.
func (s Status) ValidateNegotiable() error {
	if s != Pending && s != Scheduled {
		return errs.NewStatusTransitionError("job", s.String(), "slot negotiation")
	}
	return nil
}

// Schedule moves Pending (or Scheduled, for the no-cleaner check done by the aggregate) to Scheduled.
func (s Status) Schedule() (Status, error) {
	if s != Pending && s != Scheduled {
		return Unknown, errs.NewStatusTransitionError("job", s.String(), Scheduled.String())
	}
	return Scheduled, nil
}

func (s Status) Start() (Status, error) {
	if s != Scheduled {
		return Unknown, errs.NewStatusTransitionError("job", s.String(), InProgress.String())
	}
	return InProgress, nil
}

func (s Status) Complete() (Status, error) {
	if s != InProgress {
		return Unknown, errs.NewStatusTransitionError("job", s.String(), Completed.String())
	}
	return Completed, nil
}

// MarkPaid accepts Completed and the already-Paid state. The latter is a no-op for the caller.
func (s Status) MarkPaid() (Status, error) {
	if s != Completed && s != Paid {
		return Unknown, errs.NewStatusTransitionError("job", s.String(), Paid.String())
	}
	return Paid, nil
}

func (s Status) Cancel() (Status, error) {
	if s != Pending && s != Scheduled && s != InProgress {
		return Unknown, errs.NewStatusTransitionError("job", s.String(), Canceled.String())
	}
	return Canceled, nil
}
