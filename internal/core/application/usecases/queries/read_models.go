// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Job and payment listings read straight from the tables with SQL; the matching queries
// go through the repositories because they need the domain aggregates to score.
package queries

import (
	"database/sql"
	"fmt"
	"time"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// JobView is the read model of a job.
type JobView struct {
	ID               kernel.UUID
	ClientID         kernel.UUID
	CleanerID        *kernel.UUID
	Status           job.Status
	Address          string
	City             string
	Latitude         float64
	Longitude        float64
	Description      string
	EstimatedMinutes int
	BaseCost         kernel.Money
	FinalCost        *kernel.Money
	ActualMinutes    *int
	CreatedAt        time.Time
	ScheduledFor     *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CanceledAt       *time.Time
	CancelReason     string
	Slots            []SlotView
}

// SlotView is the read model of a proposed schedule slot.
type SlotView struct {
	ID                kernel.UUID
	ProposerID        kernel.UUID
	Start             time.Time
	End               time.Time
	ProposedByCleaner bool
	Acceptance        job.Acceptance
}

const jobColumns = `
	id,
	client_id,
	cleaner_id,
	status,
	location_address,
	location_city,
	location_latitude,
	location_longitude,
	description,
	estimated_minutes,
	base_cost,
	final_cost,
	actual_minutes,
	created_at,
	scheduled_for,
	started_at,
	completed_at,
	canceled_at,
	cancel_reason`

func scanJob(rows *sql.Rows) (JobView, error) {
	var (
		view      JobView
		id        uuid.UUID
		clientID  uuid.UUID
		cleanerID uuid.NullUUID
		status    int
		baseCost  int64
		finalCost sql.NullInt64
	)

	err := rows.Scan(
		&id,
		&clientID,
		&cleanerID,
		&status,
		&view.Address,
		&view.City,
		&view.Latitude,
		&view.Longitude,
		&view.Description,
		&view.EstimatedMinutes,
		&baseCost,
		&finalCost,
		&view.ActualMinutes,
		&view.CreatedAt,
		&view.ScheduledFor,
		&view.StartedAt,
		&view.CompletedAt,
		&view.CanceledAt,
		&view.CancelReason,
	)
	if err != nil {
		return JobView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return JobView{}, err
	}
	if view.ClientID, err = kernel.UUIDFromBytes(clientID[:]); err != nil {
		return JobView{}, err
	}
	if cleanerID.Valid {
		cid, idErr := kernel.UUIDFromBytes(cleanerID.UUID[:])
		if idErr != nil {
			return JobView{}, idErr
		}
		view.CleanerID = &cid
	}

	view.Status = job.Status(status)
	if view.BaseCost, err = kernel.NewMoney(baseCost); err != nil {
		return JobView{}, err
	}
	if finalCost.Valid {
		cost, moneyErr := kernel.NewMoney(finalCost.Int64)
		if moneyErr != nil {
			return JobView{}, moneyErr
		}
		view.FinalCost = &cost
	}
	return view, nil
}

func collectJobs(rows *sql.Rows) ([]JobView, error) {
	defer rows.Close()

	jobs := make([]JobView, 0)
	for rows.Next() {
		view, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, view)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func validatePage(limit, offset int) error {
	if limit < 1 || limit > MaxPageSize {
		return errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageSize)
	}
	if offset < 0 {
		return errs.NewValueIsInvalidErrorWithCause("offset", fmt.Errorf("%d is negative", offset))
	}
	return nil
}

// pageOrDefault maps an unset limit to DefaultPageSize.
func pageOrDefault(limit int) int {
	if limit == 0 {
		return DefaultPageSize
	}
	return limit
}
