package commands

import (
	"errors"
	"strings"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"
	"cleaning/internal/pkg/guard"
)

var ErrCreateJobCommandIsNotConstructed = errors.New(
	"CreateJobCommand must be created via NewCreateJobCommand constructor",
)

// CreateJobCommand represents a client's request for a cleaning job.
//
// Example:
//
//	location, _ := kernel.NewLocation("12 Riverside Drive", "Nairobi", -1.27, 36.80)
//	cmd, err := NewCreateJobCommand(kernel.NewUUID(), clientID, location, "2 bedroom flat", 120)
//	if err != nil {
//	    return fmt.Errorf("invalid job data: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type CreateJobCommand struct { //nolint:recvcheck //using for validation
	jobID            kernel.UUID
	clientID         kernel.UUID
	location         kernel.Location
	description      string
	estimatedMinutes int

	guard guard.ConstructorGuard
}

// NewCreateJobCommand validates identifiers, the location and the estimate, which must be
// positive and at most a day.
func NewCreateJobCommand(
	jobID, clientID kernel.UUID,
	location kernel.Location,
	description string,
	estimatedMinutes int,
) (CreateJobCommand, error) {
	cmd := CreateJobCommand{
		description: strings.TrimSpace(description),
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setJobID(jobID),
		cmd.setClientID(clientID),
		cmd.setLocation(location),
		cmd.setEstimatedMinutes(estimatedMinutes),
	); err != nil {
		return CreateJobCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateJobCommand) Validate() error {
	return c.guard.Validate(ErrCreateJobCommandIsNotConstructed)
}

func (c CreateJobCommand) JobID() kernel.UUID {
	return c.jobID
}

func (c CreateJobCommand) ClientID() kernel.UUID {
	return c.clientID
}

func (c CreateJobCommand) Location() kernel.Location {
	return c.location
}

func (c CreateJobCommand) Description() string {
	return c.description
}

func (c CreateJobCommand) EstimatedMinutes() int {
	return c.estimatedMinutes
}

func (c *CreateJobCommand) setJobID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.jobID = id
	return nil
}

func (c *CreateJobCommand) setClientID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("clientID", err)
	}
	c.clientID = id
	return nil
}

func (c *CreateJobCommand) setLocation(location kernel.Location) error {
	if err := location.Validate(); err != nil {
		return err
	}
	c.location = location
	return nil
}

func (c *CreateJobCommand) setEstimatedMinutes(minutes int) error {
	if minutes <= 0 || minutes > job.MaxEstimatedMinutes {
		return errs.NewValueIsOutOfRangeError("estimatedMinutes", minutes, 1, job.MaxEstimatedMinutes)
	}
	c.estimatedMinutes = minutes
	return nil
}
