package deductions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
)

func setupDeductionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS deduction_records (
  id TEXT PRIMARY KEY,
  mode TEXT NOT NULL,
  reason TEXT NOT NULL,
  shares_deducted INTEGER NOT NULL,
  total_remaining_shares INTEGER NOT NULL,
  members_affected INTEGER NOT NULL DEFAULT 0,
  created_by TEXT NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	// The shared-cache database outlives individual tests, so start clean.
	require.NoError(t, db.Exec("DELETE FROM deduction_records").Error)
	return db
}

func seedRecord(t *testing.T, db *gorm.DB, mode enums.DeductionMode, created time.Time) *models.DeductionRecord {
	t.Helper()

	record := &models.DeductionRecord{
		ID:                   uuid.New(),
		Mode:                 mode,
		Reason:               "seed",
		SharesDeducted:       1,
		TotalRemainingShares: 100,
		MembersAffected:      1,
		CreatedBy:            uuid.New(),
		CreatedAt:            created,
	}
	require.NoError(t, db.Create(record).Error)
	return record
}

func TestRepositoryListOrdersNewestFirst(t *testing.T) {
	db := setupDeductionsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	seedRecord(t, db, enums.DeductionModeScheduled, now.Add(-2*time.Hour))
	newest := seedRecord(t, db, enums.DeductionModeAdhoc, now)

	rows, total, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, newest.ID, rows[0].ID)
}

func TestRepositoryScheduledRunExistsSince(t *testing.T) {
	db := setupDeductionsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	exists, err := repo.ScheduledRunExistsSince(context.Background(), monthStart)
	require.NoError(t, err)
	assert.False(t, exists, "empty audit trail must not gate the run")

	// Records from before the window or in the other mode do not count.
	seedRecord(t, db, enums.DeductionModeScheduled, monthStart.Add(-time.Hour))
	seedRecord(t, db, enums.DeductionModeAdhoc, now)

	exists, err = repo.ScheduledRunExistsSince(context.Background(), monthStart)
	require.NoError(t, err)
	assert.False(t, exists)

	seedRecord(t, db, enums.DeductionModeScheduled, now)

	exists, err = repo.ScheduledRunExistsSince(context.Background(), monthStart)
	require.NoError(t, err)
	assert.True(t, exists)
}
