package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// MembershipApplication captures the single/double family application form.
// Family member names are stored as they were entered; the form itself is
// rendered elsewhere.
type MembershipApplication struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID      uuid.UUID             `gorm:"column:member_id;type:uuid;not null;index"`
	Type          enums.ApplicationType `gorm:"column:type;type:application_type;not null"`
	FirstName     string                `gorm:"column:first_name;not null"`
	MiddleName    *string               `gorm:"column:middle_name"`
	LastName      string                `gorm:"column:last_name;not null"`
	Email         string                `gorm:"column:email;not null"`
	Address       string                `gorm:"column:address;type:text;not null"`
	Phone         string                `gorm:"column:phone;not null"`
	IDDocument    *string               `gorm:"column:id_document"`
	Spouse        *string               `gorm:"column:spouse"`
	SpousePhone   *string               `gorm:"column:spouse_phone"`
	AuthorizedRep *string               `gorm:"column:authorized_rep"`
	Children      []string              `gorm:"column:children;type:jsonb;serializer:json"`
	Parents       []string              `gorm:"column:parents;type:jsonb;serializer:json"`
	Siblings      []string              `gorm:"column:siblings;type:jsonb;serializer:json"`
	Status        enums.ReviewStatus    `gorm:"column:status;type:review_status;not null;default:'pending'"`
	AdminNote     *string               `gorm:"column:admin_note"`
	ReviewedBy    *uuid.UUID            `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt    *time.Time            `gorm:"column:reviewed_at"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
