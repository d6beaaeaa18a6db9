package jobrepo

import (
	"context"
	"errors"

	"cleaning/internal/core/domain/model/job"
	"cleaning/internal/core/domain/model/kernel"
	"cleaning/internal/core/domain/services"
	"cleaning/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormJobRepository implements ports.JobRepository using GORM.
type GormJobRepository struct {
	db *gorm.DB
}

func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

// Add inserts the job row and its slots.
func (r *GormJobRepository) Add(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	return r.db.WithContext(ctx).Create(&dto).Error
}

// Update writes every job column conditioned on the loaded version and bumps it, then
// upserts the slots. Slots are never deleted; only their acceptance changes.
func (r *GormJobRepository) Update(ctx context.Context, aggregate *job.Job) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	loaded := dto.Version
	dto.Version = loaded + 1

	db := r.db.WithContext(ctx)
	result := db.Model(&JobDTO{}).
		Where("id = ? AND version = ?", dto.ID, loaded).
		Select("*").
		Omit("ID", "CreatedAt", "Slots").
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missingOrStale(ctx, aggregate.ID())
	}

	if len(dto.Slots) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"acceptance"}),
	}).Create(&dto.Slots).Error
}

func (r *GormJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.get(r.db.WithContext(ctx), id)
}

// GetForUpdate locks the job row with SELECT ... FOR UPDATE.
func (r *GormJobRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*job.Job, error) {
	return r.get(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

// ListCommitments reads only the columns needed to rebuild the windows.
func (r *GormJobRepository) ListCommitments(ctx context.Context, cleanerID kernel.UUID) ([]services.Commitment, error) {
	if err := cleanerID.Validate(); err != nil {
		return nil, err
	}

	var rows []JobDTO
	err := r.db.WithContext(ctx).
		Select("id", "scheduled_for", "estimated_minutes").
		Where("cleaner_id = ? AND status IN ? AND scheduled_for IS NOT NULL",
			cleanerID.Bytes(), []int{int(job.Scheduled), int(job.InProgress)}).
		Order("scheduled_for").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	commitments := make([]services.Commitment, 0, len(rows))
	for _, row := range rows {
		id, idErr := kernel.UUIDFromBytes(row.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		window, windowErr := kernel.WindowFrom(*row.ScheduledFor, row.EstimatedMinutes)
		if windowErr != nil {
			return nil, windowErr
		}
		commitments = append(commitments, services.Commitment{JobID: id, Window: window})
	}
	return commitments, nil
}

// ListPending returns Pending jobs, oldest first.
func (r *GormJobRepository) ListPending(ctx context.Context, limit, offset int) ([]*job.Job, error) {
	var dtos []JobDTO
	err := r.db.WithContext(ctx).
		Preload("Slots", orderSlots).
		Where("status = ?", int(job.Pending)).
		Order("created_at, id").
		Limit(limit).
		Offset(offset).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	jobs := make([]*job.Job, 0, len(dtos))
	for _, dto := range dtos {
		j, mapErr := toDomain(dto)
		if mapErr != nil {
			return nil, mapErr
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (r *GormJobRepository) get(db *gorm.DB, id kernel.UUID) (*job.Job, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto JobDTO
	if err := db.Preload("Slots", orderSlots).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("job", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormJobRepository) missingOrStale(ctx context.Context, id kernel.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&JobDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("job", id.String())
	}
	return errs.NewVersionIsInvalidError("job")
}

func orderSlots(db *gorm.DB) *gorm.DB {
	return db.Order("start_at, id")
}
