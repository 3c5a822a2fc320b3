package deductions

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Repository exposes persistence helpers for deduction audit records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.DeductionRecord) error
	List(ctx context.Context, limit, offset int) ([]models.DeductionRecord, int64, error)
	ScheduledRunExistsSince(ctx context.Context, since time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a deduction records repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, record *models.DeductionRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repositoryImpl) List(ctx context.Context, limit, offset int) ([]models.DeductionRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DeductionRecord{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.DeductionRecord
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ScheduledRunExistsSince reports whether a scheduled-mode audit record was
// written at or after the given instant. The deduction service uses it to keep
// the automatic run to once per calendar month.
func (r *repositoryImpl) ScheduledRunExistsSince(ctx context.Context, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.DeductionRecord{}).
		Where("mode = ? AND created_at >= ?", enums.DeductionModeScheduled, since).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
