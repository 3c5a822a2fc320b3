package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Member is the canonical identity and profile entity. SharesOwned is derived
// from approved share ledger entries and must only be written by the balance
// reconciler or the deduction engine; Status must only be written through the
// activation engine.
type Member struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email                 string             `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash          string             `gorm:"column:password_hash;not null"`
	FirstName             string             `gorm:"column:first_name;not null"`
	LastName              string             `gorm:"column:last_name;not null"`
	Phone                 *string            `gorm:"column:phone"`
	Address               *string            `gorm:"column:address"`
	City                  *string            `gorm:"column:city"`
	State                 *string            `gorm:"column:state"`
	ZipCode               *string            `gorm:"column:zip_code"`
	EmergencyContactName  *string            `gorm:"column:emergency_contact_name"`
	EmergencyContactPhone *string            `gorm:"column:emergency_contact_phone"`
	SharesOwned           int                `gorm:"column:shares_owned;not null;default:0"`
	MembershipType        *string            `gorm:"column:membership_type"`
	Status                enums.MemberStatus `gorm:"column:status;type:member_status;not null;default:'registered'"`
	Role                  enums.MemberRole   `gorm:"column:role;type:member_role;not null;default:'member'"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName is used in outbound email salutations.
func (m Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}
