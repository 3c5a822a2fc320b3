package meetings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
)

// Repository exposes persistence helpers for meetings.
type Repository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	List(ctx context.Context, params ListFilter) ([]models.Meeting, int64, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a meetings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListFilter narrows a meetings query. UpcomingAfter non-zero keeps only
// meetings starting at or after the given instant.
type ListFilter struct {
	ActiveOnly    bool
	UpcomingAfter time.Time
	Limit         int
	Offset        int
}

func (r *repositoryImpl) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	var meeting models.Meeting
	if err := r.db.WithContext(ctx).First(&meeting, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &meeting, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.Meeting, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Meeting{})
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if !params.UpcomingAfter.IsZero() {
		query = query.Where("starts_at >= ?", params.UpcomingAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Meeting
	if err := query.Order("starts_at ASC, id ASC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Meeting{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&models.Meeting{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
