package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// DeductionRecord is the append-only audit row written once per deduction run.
// For ad-hoc runs SharesDeducted is the per-member amount that was applied;
// for scheduled runs it is the total deducted across all affected members.
// TotalRemainingShares is the company-wide balance after the run committed.
type DeductionRecord struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Mode                 enums.DeductionMode `gorm:"column:mode;type:deduction_mode;not null"`
	Reason               string              `gorm:"column:reason;type:text;not null"`
	SharesDeducted       int                 `gorm:"column:shares_deducted;not null"`
	TotalRemainingShares int                 `gorm:"column:total_remaining_shares;not null"`
	MembersAffected      int                 `gorm:"column:members_affected;not null;default:0"`
	CreatedBy            uuid.UUID           `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
}
