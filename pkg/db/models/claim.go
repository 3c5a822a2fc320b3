package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Claim is a benefit claim submitted by a member for admin review.
type Claim struct {
	ID                  uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID            uuid.UUID               `gorm:"column:member_id;type:uuid;not null;index"`
	Type                enums.ClaimType         `gorm:"column:type;type:claim_type;not null"`
	ClaimantName        string                  `gorm:"column:claimant_name;not null"`
	Relationship        enums.ClaimRelationship `gorm:"column:relationship;type:claim_relationship;not null"`
	IncidentDate        time.Time               `gorm:"column:incident_date;type:date;not null"`
	AmountRequested     decimal.Decimal         `gorm:"column:amount_requested;type:numeric(10,2);not null"`
	Description         string                  `gorm:"column:description;type:text;not null"`
	SupportingDocuments *string                 `gorm:"column:supporting_documents"`
	Status              enums.ReviewStatus      `gorm:"column:status;type:review_status;not null;default:'pending'"`
	AdminNote           *string                 `gorm:"column:admin_note"`
	ReviewedBy          *uuid.UUID              `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt          *time.Time              `gorm:"column:reviewed_at"`
	CreatedAt           time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
