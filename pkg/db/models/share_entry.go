package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// ShareLedgerEntry is one share purchase request. Only approved entries count
// toward a member's owned-share balance. Entries are immutable once decided,
// except for the admin note.
type ShareLedgerEntry struct {
	ID              uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID        uuid.UUID          `gorm:"column:member_id;type:uuid;not null;index"`
	SharesRequested int                `gorm:"column:shares_requested;not null"`
	AmountPaid      decimal.Decimal    `gorm:"column:amount_paid;type:numeric(10,2);not null"`
	PaymentMethod   *string            `gorm:"column:payment_method"`
	TransactionID   *string            `gorm:"column:transaction_id"`
	PaymentProof    *string            `gorm:"column:payment_proof"`
	Notes           *string            `gorm:"column:notes"`
	Status          enums.ReviewStatus `gorm:"column:status;type:review_status;not null;default:'pending'"`
	AdminNote       *string            `gorm:"column:admin_note"`
	ReviewedBy      *uuid.UUID         `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time         `gorm:"column:reviewed_at"`
	CreatedAt       time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (ShareLedgerEntry) TableName() string {
	return "share_ledger_entries"
}
