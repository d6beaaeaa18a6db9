package cleanerrepo

import (
	"context"
	"errors"

	"cleaning/internal/core/domain/model/cleaner"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCleanerRepository implements ports.CleanerRepository using GORM.
type GormCleanerRepository struct {
	db *gorm.DB
}

func NewGormCleanerRepository(db *gorm.DB) *GormCleanerRepository {
	return &GormCleanerRepository{db: db}
}

func (r *GormCleanerRepository) Add(ctx context.Context, profile *cleaner.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	dto := fromDomain(profile)
	return r.db.WithContext(ctx).Create(&dto).Error
}

func (r *GormCleanerRepository) Get(ctx context.Context, id kernel.UUID) (*cleaner.Profile, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// Lock reads the profile with SELECT ... FOR UPDATE. Concurrent assignments of the same
// cleaner queue behind this lock until the holder's transaction ends.
func (r *GormCleanerRepository) Lock(ctx context.Context, id kernel.UUID) (*cleaner.Profile, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormCleanerRepository) ListAvailable(ctx context.Context) ([]*cleaner.Profile, error) {
	var dtos []CleanerDTO
	if err := r.db.WithContext(ctx).
		Where("active = ? AND verified = ?", true, true).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	profiles := make([]*cleaner.Profile, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (r *GormCleanerRepository) get(db *gorm.DB, id kernel.UUID) (*cleaner.Profile, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto CleanerDTO
	if err := db.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("cleaner", id.String())
		}
		return nil, err
	}
	return toDomain(dto)
}
