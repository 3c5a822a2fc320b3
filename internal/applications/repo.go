package applications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Repository exposes persistence helpers for membership applications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, application *models.MembershipApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error)
	GetForReview(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error)
	HasPending(ctx context.Context, memberID uuid.UUID) (bool, error)
	List(ctx context.Context, params ListFilter) ([]models.MembershipApplication, int64, error)
	UpdateReview(ctx context.Context, application *models.MembershipApplication) error
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns an applications repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListFilter narrows an applications query.
type ListFilter struct {
	MemberID *uuid.UUID
	Status   *enums.ReviewStatus
	Limit    int
	Offset   int
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, application *models.MembershipApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	var application models.MembershipApplication
	if err := r.db.WithContext(ctx).First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

// GetForReview locks the row on Postgres so concurrent reviewers serialize.
func (r *repositoryImpl) GetForReview(ctx context.Context, id uuid.UUID) (*models.MembershipApplication, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var application models.MembershipApplication
	if err := query.First(&application, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (r *repositoryImpl) HasPending(ctx context.Context, memberID uuid.UUID) (bool, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.MembershipApplication{}).
		Where("member_id = ? AND status = ?", memberID, enums.ReviewStatusPending).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.MembershipApplication, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MembershipApplication{})
	if params.MemberID != nil {
		query = query.Where("member_id = ?", *params.MemberID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.MembershipApplication
	if err := query.Order("created_at DESC, id DESC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) UpdateReview(ctx context.Context, application *models.MembershipApplication) error {
	return r.db.WithContext(ctx).
		Model(&models.MembershipApplication{}).
		Where("id = ?", application.ID).
		Updates(map[string]any{
			"status":      application.Status,
			"admin_note":  application.AdminNote,
			"reviewed_by": application.ReviewedBy,
			"reviewed_at": application.ReviewedAt,
			"updated_at":  application.UpdatedAt,
		}).Error
}
