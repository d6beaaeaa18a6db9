package kernel

import (
	"fmt"
	"time"

	"cleaning/internal/pkg/errs"
)

// TimeWindow is a half-open interval [start, end). Two windows that only touch at a
// boundary do not overlap.
type TimeWindow struct {
	start time.Time
	end   time.Time
}

func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if start.IsZero() {
		return TimeWindow{}, errs.NewValueIsRequiredError("start")
	}
	if !end.After(start) {
		return TimeWindow{}, errs.NewValueIsInvalidErrorWithCause("end",
			fmt.Errorf("%s is not after %s", end.Format(time.RFC3339), start.Format(time.RFC3339)))
	}
	return TimeWindow{start: start, end: end}, nil
}

// WindowFrom builds the window that starts at start and lasts the given number of minutes.
func WindowFrom(start time.Time, minutes int) (TimeWindow, error) {
	return NewTimeWindow(start, start.Add(time.Duration(minutes)*time.Minute))
}

func (w TimeWindow) Start() time.Time {
	return w.start
}

func (w TimeWindow) End() time.Time {
	return w.end
}

func (w TimeWindow) Duration() time.Duration {
	return w.end.Sub(w.start)
}

// Overlaps applies the half-open intersection test start < otherEnd && end > otherStart.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	return w.start.Before(other.end) && w.end.After(other.start)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.start.Format(time.RFC3339), w.end.Format(time.RFC3339))
}
