package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Payment records dues, fees and other manual payments awaiting admin review.
type Payment struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID      uuid.UUID           `gorm:"column:member_id;type:uuid;not null;index"`
	Type          enums.PaymentType   `gorm:"column:type;type:payment_type;not null"`
	Amount        decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Method        enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	TransactionID *string             `gorm:"column:transaction_id"`
	Description   *string             `gorm:"column:description"`
	PaymentProof  *string             `gorm:"column:payment_proof"`
	Status        enums.ReviewStatus  `gorm:"column:status;type:review_status;not null;default:'pending'"`
	AdminNote     *string             `gorm:"column:admin_note"`
	ReviewedBy    *uuid.UUID          `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt    *time.Time          `gorm:"column:reviewed_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
