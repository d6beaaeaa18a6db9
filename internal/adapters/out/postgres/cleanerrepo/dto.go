// Package cleanerrepo persists cleaner profiles with GORM.
package cleanerrepo

import (
	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CleanerDTO is the row of the cleaners table. HourlyRate holds minor units.
type CleanerDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	HourlyRate    int64     `gorm:"not null"`
	Rating        float64   `gorm:"not null"`
	CompletedJobs int       `gorm:"not null"`
	TotalJobs     int       `gorm:"not null"`
	Active        bool      `gorm:"not null;index:idx_cleaners_available"`
	Verified      bool      `gorm:"not null;index:idx_cleaners_available"`
}

func (CleanerDTO) TableName() string {
	return "cleaners"
}

func fromDomain(p *cleaner.Profile) CleanerDTO {
	return CleanerDTO{
		ID:            p.ID().Bytes(),
		Name:          p.Name(),
		HourlyRate:    p.HourlyRate().Minor(),
		Rating:        p.Rating(),
		CompletedJobs: p.CompletedJobs(),
		TotalJobs:     p.TotalJobs(),
		Active:        p.IsActive(),
		Verified:      p.IsVerified(),
	}
}

func toDomain(dto CleanerDTO) (*cleaner.Profile, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	rate, err := kernel.NewMoney(dto.HourlyRate)
	if err != nil {
		return nil, err
	}
	return cleaner.NewProfile(id, dto.Name, rate, dto.Rating, dto.CompletedJobs, dto.TotalJobs, dto.Active, dto.Verified)
}
