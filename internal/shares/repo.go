package shares

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Repository exposes persistence helpers for the share ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.ShareLedgerEntry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ShareLedgerEntry, error)
	GetForReview(ctx context.Context, id uuid.UUID) (*models.ShareLedgerEntry, error)
	List(ctx context.Context, params ListFilter) ([]models.ShareLedgerEntry, int64, error)
	UpdateReview(ctx context.Context, entry *models.ShareLedgerEntry) error
	SumApproved(ctx context.Context, memberID uuid.UUID) (int, error)
	SumApprovedAll(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[enums.ReviewStatus]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a share ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListFilter narrows a ledger query.
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

func (r *repositoryImpl) Create(ctx context.Context, entry *models.ShareLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.ShareLedgerEntry, error) {
	var entry models.ShareLedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetForReview loads the entry for a decision. The row is locked on Postgres
// so concurrent reviews of the same entry serialize; sqlite ignores the clause.
func (r *repositoryImpl) GetForReview(ctx context.Context, id uuid.UUID) (*models.ShareLedgerEntry, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var entry models.ShareLedgerEntry
	if err := query.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.ShareLedgerEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ShareLedgerEntry{})
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

	var rows []models.ShareLedgerEntry
	if err := query.Order("created_at DESC, id DESC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) UpdateReview(ctx context.Context, entry *models.ShareLedgerEntry) error {
	return r.db.WithContext(ctx).
		Model(&models.ShareLedgerEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]any{
			"status":      entry.Status,
			"admin_note":  entry.AdminNote,
			"reviewed_by": entry.ReviewedBy,
			"reviewed_at": entry.ReviewedAt,
			"updated_at":  entry.UpdatedAt,
		}).Error
}

func (r *repositoryImpl) SumApproved(ctx context.Context, memberID uuid.UUID) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&models.ShareLedgerEntry{}).
		Select("SUM(shares_requested)").
		Where("member_id = ? AND status = ?", memberID, enums.ReviewStatusApproved).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repositoryImpl) SumApprovedAll(ctx context.Context) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&models.ShareLedgerEntry{}).
		Select("SUM(shares_requested)").
		Where("status = ?", enums.ReviewStatusApproved).
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repositoryImpl) CountByStatus(ctx context.Context) (map[enums.ReviewStatus]int64, error) {
	type row struct {
		Status enums.ReviewStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.ShareLedgerEntry{}).
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
