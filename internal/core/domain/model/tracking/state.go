package tracking

import (
	"fmt"
	"strings"

	"cleaning/internal/pkg/errs"
)

// State is the state of a work session.
//
//	(none) ──> Running ⇄ Paused
//	              │         │
//	              └────┬────┘
//	                   v
//	                Stopped
type State int

const (
	Unknown State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Stopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// ParseState reads the stored representation of a state.
func ParseState(value string) (State, error) {
	for _, s := range []State{Running, Paused, Stopped} {
		if strings.EqualFold(value, s.String()) {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a valid tracking state", value))
}

// IsActive reports whether the session still occupies the job and its cleaner.
func (s State) IsActive() bool {
	return s == Running || s == Paused
}
