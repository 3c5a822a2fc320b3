package claims

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Repository exposes persistence helpers for benefit claims.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	GetForReview(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	List(ctx context.Context, params ListFilter) ([]models.Claim, int64, error)
	UpdateReview(ctx context.Context, claim *models.Claim) error
	CountByStatus(ctx context.Context) (map[enums.ReviewStatus]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a claims repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListFilter narrows a claims query.
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

func (r *repositoryImpl) Create(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := r.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// GetForReview locks the row on Postgres so concurrent reviewers serialize.
func (r *repositoryImpl) GetForReview(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var claim models.Claim
	if err := query.First(&claim, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.Claim, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Claim{})
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

	var rows []models.Claim
	if err := query.Order("created_at DESC, id DESC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) UpdateReview(ctx context.Context, claim *models.Claim) error {
	return r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Where("id = ?", claim.ID).
		Updates(map[string]any{
			"status":      claim.Status,
			"admin_note":  claim.AdminNote,
			"reviewed_by": claim.ReviewedBy,
			"reviewed_at": claim.ReviewedAt,
			"updated_at":  claim.UpdatedAt,
		}).Error
}

func (r *repositoryImpl) CountByStatus(ctx context.Context) (map[enums.ReviewStatus]int64, error) {
	type row struct {
		Status enums.ReviewStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Claim{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.ReviewStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
