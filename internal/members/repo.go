package members

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Repository exposes persistence helpers for members.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, member *models.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	List(ctx context.Context, params ListFilter) ([]models.Member, int64, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error
	SaveBalanceAndStatus(ctx context.Context, id uuid.UUID, shares int, status enums.MemberStatus, now time.Time) error
	ListForDeduction(ctx context.Context, minShares int) ([]models.Member, error)
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
	SumAllShares(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[enums.MemberStatus]int64, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a members repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

// ListFilter narrows a directory query.
type ListFilter struct {
	Status *enums.MemberStatus
	Search string
	Limit  int
	Offset int
}

func (r *repositoryImpl) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repositoryImpl{db: tx}
}

func (r *repositoryImpl) Create(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// GetForUpdate loads a member holding a row lock for the rest of the enclosing
// transaction. Balance recompute and status reconcile read and write under the
// same lock, so concurrent reviews of the same member serialize. The lock is a
// Postgres FOR UPDATE; sqlite ignores the clause.
func (r *repositoryImpl) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	query := r.db.WithContext(ctx)
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var member models.Member
	if err := query.First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repositoryImpl) List(ctx context.Context, params ListFilter) ([]models.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Member
	if err := query.Order("created_at DESC, id DESC").Limit(params.Limit).Offset(params.Offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repositoryImpl) SaveBalanceAndStatus(ctx context.Context, id uuid.UUID, shares int, status enums.MemberStatus, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"shares_owned": shares,
			"status":       status,
			"updated_at":   now,
		}).Error
}

// ListForDeduction loads members ordered by id so concurrent runs lock rows
// in a stable order. Rows are locked on Postgres; sqlite ignores the clause.
func (r *repositoryImpl) ListForDeduction(ctx context.Context, minShares int) ([]models.Member, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{})
	if minShares > 0 {
		query = query.Where("shares_owned >= ?", minShares)
	}
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var rows []models.Member
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repositoryImpl) ListAdminIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("role = ?", enums.MemberRoleAdmin).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repositoryImpl) SumAllShares(ctx context.Context) (int, error) {
	var total *int
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("SUM(shares_owned)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repositoryImpl) CountByStatus(ctx context.Context) (map[enums.MemberStatus]int64, error) {
	type row struct {
		Status enums.MemberStatus
		Total  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.MemberStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
