package shares

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

func setupSharesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS share_ledger_entries (
  id TEXT PRIMARY KEY,
  member_id TEXT NOT NULL,
  shares_requested INTEGER NOT NULL,
  amount_paid NUMERIC NOT NULL,
  payment_method TEXT,
  transaction_id TEXT,
  payment_proof TEXT,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  admin_note TEXT,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	// The shared-cache database outlives individual tests, so start clean.
	require.NoError(t, db.Exec("DELETE FROM share_ledger_entries").Error)
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, memberID uuid.UUID, shares int, status enums.ReviewStatus, created time.Time) *models.ShareLedgerEntry {
	t.Helper()

	entry := &models.ShareLedgerEntry{
		ID:              uuid.New(),
		MemberID:        memberID,
		SharesRequested: shares,
		AmountPaid:      decimal.NewFromInt(int64(shares * 20)),
		Status:          status,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositoryListFiltersByMemberAndStatus(t *testing.T) {
	db := setupSharesTestDB(t)
	repo := NewRepository(db)

	memberA := uuid.New()
	memberB := uuid.New()
	now := time.Now().UTC()

	seedEntry(t, db, memberA, 5, enums.ReviewStatusApproved, now.Add(-2*time.Hour))
	older := seedEntry(t, db, memberA, 3, enums.ReviewStatusPending, now.Add(-time.Hour))
	newest := seedEntry(t, db, memberA, 2, enums.ReviewStatusPending, now)
	seedEntry(t, db, memberB, 10, enums.ReviewStatusPending, now)

	pending := enums.ReviewStatusPending
	rows, total, err := repo.List(context.Background(), ListFilter{
		MemberID: &memberA,
		Status:   &pending,
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupSharesTestDB(t)
	repo := NewRepository(db)

	member := uuid.New()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		seedEntry(t, db, member, i+1, enums.ReviewStatusPending, now.Add(time.Duration(i)*time.Minute))
	}

	rows, total, err := repo.List(context.Background(), ListFilter{MemberID: &member, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, rows, 2)
	assert.Equal(t, 3, rows[0].SharesRequested)
	assert.Equal(t, 2, rows[1].SharesRequested)
}

func TestRepositorySumApprovedIgnoresPendingAndRejected(t *testing.T) {
	db := setupSharesTestDB(t)
	repo := NewRepository(db)

	member := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()

	seedEntry(t, db, member, 10, enums.ReviewStatusApproved, now)
	seedEntry(t, db, member, 5, enums.ReviewStatusApproved, now)
	seedEntry(t, db, member, 7, enums.ReviewStatusPending, now)
	seedEntry(t, db, member, 3, enums.ReviewStatusRejected, now)
	seedEntry(t, db, other, 4, enums.ReviewStatusApproved, now)

	owned, err := repo.SumApproved(context.Background(), member)
	require.NoError(t, err)
	assert.Equal(t, 15, owned)

	all, err := repo.SumApprovedAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 19, all)
}

func TestRepositorySumApprovedEmptyLedger(t *testing.T) {
	db := setupSharesTestDB(t)
	repo := NewRepository(db)

	owned, err := repo.SumApproved(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, owned)

	all, err := repo.SumApprovedAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, all)
}

func TestRepositoryCountByStatus(t *testing.T) {
	db := setupSharesTestDB(t)
	repo := NewRepository(db)

	member := uuid.New()
	now := time.Now().UTC()
	seedEntry(t, db, member, 1, enums.ReviewStatusPending, now)
	seedEntry(t, db, member, 1, enums.ReviewStatusPending, now)
	seedEntry(t, db, member, 1, enums.ReviewStatusApproved, now)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.ReviewStatusPending])
	assert.Equal(t, int64(1), counts[enums.ReviewStatusApproved])
	assert.Zero(t, counts[enums.ReviewStatusRejected])
}

func TestRepositoryUpdateReviewPersistsDecision(t *testing.T) {
	db := setupSharesTestDB(t)
	repo := NewRepository(db)

	member := uuid.New()
	entry := seedEntry(t, db, member, 5, enums.ReviewStatusPending, time.Now().UTC())

	reviewer := uuid.New()
	reviewedAt := time.Now().UTC()
	note := "looks good"
	entry.Status = enums.ReviewStatusApproved
	entry.AdminNote = &note
	entry.ReviewedBy = &reviewer
	entry.ReviewedAt = &reviewedAt
	require.NoError(t, repo.UpdateReview(context.Background(), entry))

	stored, err := repo.GetForReview(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.ReviewStatusApproved, stored.Status)
	require.NotNil(t, stored.AdminNote)
	assert.Equal(t, note, *stored.AdminNote)
	require.NotNil(t, stored.ReviewedBy)
	assert.Equal(t, reviewer, *stored.ReviewedBy)
}
