// Package jobrepo persists job aggregates and their schedule slots with GORM.
package jobrepo

import (
	"time"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// JobDTO is the row of the jobs table. Money columns hold minor units.
type JobDTO struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey"`
	ClientID         uuid.UUID   `gorm:"type:uuid;not null;index"`
	CleanerID        *uuid.UUID  `gorm:"type:uuid;index:idx_jobs_cleaner_status"`
	Status           int         `gorm:"not null;index;index:idx_jobs_cleaner_status"`
	Location         LocationDTO `gorm:"embedded;embeddedPrefix:location_"`
	Description      string      `gorm:"type:text"`
	EstimatedMinutes int         `gorm:"not null"`
	RatePerMinute    int64       `gorm:"not null"`
	BaseCost         int64       `gorm:"not null"`
	FinalCost        *int64
	ActualMinutes    *int
	CreatedAt        time.Time `gorm:"not null;index;autoCreateTime:false"`
	ScheduledFor     *time.Time
	StartedAt        *time.Time
	CompletedAt      *time.Time
	CanceledAt       *time.Time
	CanceledBy       *uuid.UUID `gorm:"type:uuid"`
	CancelReason     string     `gorm:"type:varchar(500)"`
	Version          int        `gorm:"not null"`
	Slots            []SlotDTO  `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE"`
}

func (JobDTO) TableName() string {
	return "jobs"
}

// LocationDTO is the embedded service address.
type LocationDTO struct {
	Address   string  `gorm:"type:varchar(255);not null"`
	City      string  `gorm:"type:varchar(100);not null"`
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}

// SlotDTO is the row of the schedule_slots table. The partial unique index keeps at most
// one accepted slot per job even if two transactions race past the aggregate check.
type SlotDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID             uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_slots_one_accepted,where:acceptance = 2"`
	ProposerID        uuid.UUID `gorm:"type:uuid;not null"`
	StartAt           time.Time `gorm:"not null"`
	EndAt             time.Time `gorm:"not null"`
	ProposedByCleaner bool      `gorm:"not null"`
	Acceptance        int       `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null;autoCreateTime:false"`
}

func (SlotDTO) TableName() string {
	return "schedule_slots"
}

func fromDomain(j *job.Job) JobDTO {
	dto := JobDTO{
		ID:               j.ID().Bytes(),
		ClientID:         j.ClientID().Bytes(),
		CleanerID:        optionalID(j.CleanerID()),
		Status:           int(j.Status()),
		Description:      j.Description(),
		EstimatedMinutes: j.EstimatedMinutes(),
		RatePerMinute:    j.RatePerMinute().Minor(),
		BaseCost:         j.BaseCost().Minor(),
		ActualMinutes:    j.ActualMinutes(),
		CreatedAt:        j.CreatedAt(),
		ScheduledFor:     j.ScheduledFor(),
		StartedAt:        j.StartedAt(),
		CompletedAt:      j.CompletedAt(),
		CanceledAt:       j.CanceledAt(),
		CanceledBy:       optionalID(j.CanceledBy()),
		CancelReason:     j.CancelReason(),
		Version:          j.Version(),
		Location: LocationDTO{
			Address:   j.Location().Address(),
			City:      j.Location().City(),
			Latitude:  j.Location().Latitude(),
			Longitude: j.Location().Longitude(),
		},
	}
	if cost := j.FinalCost(); cost != nil {
		minor := cost.Minor()
		dto.FinalCost = &minor
	}

	dto.Slots = make([]SlotDTO, 0, len(j.Slots()))
	for _, s := range j.Slots() {
		dto.Slots = append(dto.Slots, SlotDTO{
			ID:                s.ID().Bytes(),
			JobID:             dto.ID,
			ProposerID:        s.ProposerID().Bytes(),
			StartAt:           s.Start(),
			EndAt:             s.End(),
			ProposedByCleaner: s.ProposedByCleaner(),
			Acceptance:        int(s.Acceptance()),
			CreatedAt:         s.CreatedAt(),
		})
	}
	return dto
}

func toDomain(dto JobDTO) (*job.Job, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	clientID, err := kernel.UUIDFromBytes(dto.ClientID[:])
	if err != nil {
		return nil, err
	}
	cleanerID, err := restoreOptionalID(dto.CleanerID)
	if err != nil {
		return nil, err
	}
	canceledBy, err := restoreOptionalID(dto.CanceledBy)
	if err != nil {
		return nil, err
	}
	loc, err := kernel.NewLocation(dto.Location.Address, dto.Location.City, dto.Location.Latitude, dto.Location.Longitude)
	if err != nil {
		return nil, err
	}
	rate, err := kernel.NewMoney(dto.RatePerMinute)
	if err != nil {
		return nil, err
	}
	baseCost, err := kernel.NewMoney(dto.BaseCost)
	if err != nil {
		return nil, err
	}
	var finalCost *kernel.Money
	if dto.FinalCost != nil {
		cost, costErr := kernel.NewMoney(*dto.FinalCost)
		if costErr != nil {
			return nil, costErr
		}
		finalCost = &cost
	}

	slots := make([]*job.ScheduleSlot, 0, len(dto.Slots))
	for _, s := range dto.Slots {
		slot, slotErr := slotToDomain(s)
		if slotErr != nil {
			return nil, slotErr
		}
		slots = append(slots, slot)
	}

	return job.RestoreJob(job.Snapshot{
		ID:               id,
		ClientID:         clientID,
		CleanerID:        cleanerID,
		Status:           job.Status(dto.Status),
		Location:         loc,
		Description:      dto.Description,
		EstimatedMinutes: dto.EstimatedMinutes,
		RatePerMinute:    rate,
		BaseCost:         baseCost,
		FinalCost:        finalCost,
		ActualMinutes:    dto.ActualMinutes,
		CreatedAt:        dto.CreatedAt,
		ScheduledFor:     dto.ScheduledFor,
		StartedAt:        dto.StartedAt,
		CompletedAt:      dto.CompletedAt,
		CanceledAt:       dto.CanceledAt,
		CanceledBy:       canceledBy,
		CancelReason:     dto.CancelReason,
		Version:          dto.Version,
		Slots:            slots,
	})
}

func slotToDomain(dto SlotDTO) (*job.ScheduleSlot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	jobID, err := kernel.UUIDFromBytes(dto.JobID[:])
	if err != nil {
		return nil, err
	}
	proposerID, err := kernel.UUIDFromBytes(dto.ProposerID[:])
	if err != nil {
		return nil, err
	}
	window, err := kernel.NewTimeWindow(dto.StartAt, dto.EndAt)
	if err != nil {
		return nil, err
	}
	return job.RestoreScheduleSlot(id, jobID, proposerID, window, dto.ProposedByCleaner,
		job.Acceptance(dto.Acceptance), dto.CreatedAt)
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func restoreOptionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
