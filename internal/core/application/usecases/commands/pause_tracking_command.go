package commands

import (
	"errors"
	"strings"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrPauseTrackingCommandIsNotConstructed = errors.New(
	"PauseTrackingCommand must be created via NewPauseTrackingCommand constructor",
)

// PauseTrackingCommand suspends the clock of a running session. A reason is mandatory.
type PauseTrackingCommand struct {
	jobID     kernel.UUID
	cleanerID kernel.UUID
	reason    string

	guard guard.ConstructorGuard
}

func NewPauseTrackingCommand(jobID, cleanerID kernel.UUID, reason string) (PauseTrackingCommand, error) {
	reason = strings.TrimSpace(reason)
	err := errors.Join(jobID.Validate(), cleanerID.Validate())
	if reason == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("reason"))
	}
	if err != nil {
		return PauseTrackingCommand{}, err
	}
	return PauseTrackingCommand{
		jobID:     jobID,
		cleanerID: cleanerID,
		reason:    reason,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c PauseTrackingCommand) Validate() error {
	return c.guard.Validate(ErrPauseTrackingCommandIsNotConstructed)
}

func (c PauseTrackingCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c PauseTrackingCommand) CleanerID() kernel.UUID {
	return c.cleanerID
}

func (c PauseTrackingCommand) Reason() string {
	return c.reason
}
