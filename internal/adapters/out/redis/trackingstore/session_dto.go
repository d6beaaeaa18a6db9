package trackingstore

import (
	"time"

	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/model/tracking"
)

// sessionDTO is the JSON document stored under the job key.
type sessionDTO struct {
	JobID            string     `json:"job_id"`
	CleanerID        string     `json:"cleaner_id"`
	State            string     `json:"state"`
	StartedAt        time.Time  `json:"started_at"`
	ExpectedEnd      time.Time  `json:"expected_end"`
	EstimatedMinutes int        `json:"estimated_minutes"`
	PausedTotalMs    int64      `json:"paused_total_ms"`
	PausedAt         *time.Time `json:"paused_at,omitempty"`
	PauseReason      string     `json:"pause_reason,omitempty"`
	StoppedAt        *time.Time `json:"stopped_at,omitempty"`
}

func fromDomain(s *tracking.Session) sessionDTO {
	return sessionDTO{
		JobID:            s.JobID.String(),
		CleanerID:        s.CleanerID.String(),
		State:            s.State.String(),
		StartedAt:        s.StartedAt,
		ExpectedEnd:      s.ExpectedEnd,
		EstimatedMinutes: s.EstimatedMinutes,
		PausedTotalMs:    s.PausedTotal.Milliseconds(),
		PausedAt:         s.PausedAt,
		PauseReason:      s.PauseReason,
		StoppedAt:        s.StoppedAt,
	}
}

func (d sessionDTO) toDomain() (*tracking.Session, error) {
	jobID, err := kernel.UUIDFromString(d.JobID)
	if err != nil {
		return nil, err
	}
	cleanerID, err := kernel.UUIDFromString(d.CleanerID)
	if err != nil {
		return nil, err
	}
	state, err := tracking.ParseState(d.State)
	if err != nil {
		return nil, err
	}
	return &tracking.Session{
		JobID:            jobID,
		CleanerID:        cleanerID,
		State:            state,
		StartedAt:        d.StartedAt,
		ExpectedEnd:      d.ExpectedEnd,
		EstimatedMinutes: d.EstimatedMinutes,
		PausedTotal:      time.Duration(d.PausedTotalMs) * time.Millisecond,
		PausedAt:         d.PausedAt,
		PauseReason:      d.PauseReason,
		StoppedAt:        d.StoppedAt,
	}, nil
}
