package services

import (
	"context"

	"cleaning/internal/core/domain/model/kernel"
)

// Commitment is a window during which a cleaner is booked on a Scheduled or InProgress job.
type Commitment struct {
	JobID  kernel.UUID
	Window kernel.TimeWindow
}

// CommitmentReader lists a cleaner's current commitments.
type CommitmentReader interface {
	ListCommitments(ctx context.Context, cleanerID kernel.UUID) ([]Commitment, error)
}

// ConflictChecker decides whether a cleaner is free over a window.
type ConflictChecker struct {
	reader CommitmentReader
}

func NewConflictChecker(reader CommitmentReader) ConflictChecker {
	return ConflictChecker{reader: reader}
}

// HasConflict is true if any commitment of the cleaner intersects window.
// Touching boundaries do not conflict.
func (c ConflictChecker) HasConflict(ctx context.Context, cleanerID kernel.UUID, window kernel.TimeWindow) (bool, error) {
	commitments, err := c.reader.ListCommitments(ctx, cleanerID)
	if err != nil {
		return false, err
	}
	return Conflicts(commitments, window, nil), nil
}

// HasConflictExcluding is HasConflict ignoring the cleaner's commitment on jobID, so a
// job can be rescheduled over its own window.
func (c ConflictChecker) HasConflictExcluding(
	ctx context.Context,
	cleanerID kernel.UUID,
	window kernel.TimeWindow,
	jobID kernel.UUID,
) (bool, error) {
	commitments, err := c.reader.ListCommitments(ctx, cleanerID)
	if err != nil {
		return false, err
	}
	return Conflicts(commitments, window, &jobID), nil
}

// BookedOver reads the cleaner's commitments once and returns a predicate that is true
// for windows overlapping any of them.
func (c ConflictChecker) BookedOver(ctx context.Context, cleanerID kernel.UUID) (func(kernel.TimeWindow) bool, error) {
	commitments, err := c.reader.ListCommitments(ctx, cleanerID)
	if err != nil {
		return nil, err
	}
	return func(window kernel.TimeWindow) bool {
		return Conflicts(commitments, window, nil)
	}, nil
}

// Conflicts tests window against commitments, ignoring the job excludeJobID when set.
func Conflicts(commitments []Commitment, window kernel.TimeWindow, excludeJobID *kernel.UUID) bool {
	for _, c := range commitments {
		if excludeJobID != nil && c.JobID.IsEqual(*excludeJobID) {
			continue
		}
		if c.Window.Overlaps(window) {
			return true
		}
	}
	return false
}
