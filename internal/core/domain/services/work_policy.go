package services

import (
	"fmt"
	"time"

	"cleaning/internal/core/domain/model/tracking"
	"cleaning/internal/pkg/errs"
)

// DefaultStartTolerance is how far from the scheduled time work may start.
const DefaultStartTolerance = 30 * time.Minute

// WorkPolicy gates the start of a tracking session: Monday to Friday, between
// StartHour (inclusive) and EndHour (exclusive) in the business time zone, and within
// StartTolerance of the scheduled time.
type WorkPolicy struct {
	startHour      int
	endHour        int
	location       *time.Location
	startTolerance time.Duration
}

func NewWorkPolicy(startHour, endHour int, location *time.Location, startTolerance time.Duration) (WorkPolicy, error) {
	if startHour < 0 || startHour > 23 {
		return WorkPolicy{}, errs.NewValueIsOutOfRangeError("startHour", startHour, 0, 23)
	}
	if endHour <= startHour || endHour > 24 {
		return WorkPolicy{}, errs.NewValueIsOutOfRangeError("endHour", endHour, startHour+1, 24)
	}
	if location == nil {
		return WorkPolicy{}, errs.NewValueIsRequiredError("location")
	}
	if startTolerance <= 0 {
		startTolerance = DefaultStartTolerance
	}
	return WorkPolicy{startHour: startHour, endHour: endHour, location: location, startTolerance: startTolerance}, nil
}

// IsBusinessHours reports whether t falls on a weekday within the configured hours.
func (p WorkPolicy) IsBusinessHours(t time.Time) bool {
	local := t.In(p.location)
	if local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
		return false
	}
	return local.Hour() >= p.startHour && local.Hour() < p.endHour
}

// ValidateStart checks that work on a job scheduled for scheduledFor may begin at now.
func (p WorkPolicy) ValidateStart(scheduledFor *time.Time, now time.Time) error {
	if scheduledFor == nil {
		return errs.NewValueIsRequiredError("scheduledFor")
	}
	if !p.IsBusinessHours(now) {
		return fmt.Errorf("%w: outside business hours (%02d:00-%02d:00 %s, Monday to Friday)",
			tracking.ErrOutsideWorkWindow, p.startHour, p.endHour, p.location)
	}
	diff := now.Sub(*scheduledFor)
	if diff < 0 {
		diff = -diff
	}
	if diff > p.startTolerance {
		return fmt.Errorf("%w: more than %s away from the scheduled time %s",
			tracking.ErrOutsideWorkWindow, p.startTolerance, scheduledFor.In(p.location).Format(time.RFC3339))
	}
	return nil
}
