package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Meeting is an organization meeting announced to members.
type Meeting struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title        string            `gorm:"column:title;not null"`
	Description  *string           `gorm:"column:description;type:text"`
	StartsAt     time.Time         `gorm:"column:starts_at;not null"`
	Location     string            `gorm:"column:location;not null"`
	Type         enums.MeetingType `gorm:"column:type;type:meeting_type;not null;default:'general'"`
	MaxAttendees *int              `gorm:"column:max_attendees"`
	IsActive     bool              `gorm:"column:is_active;not null;default:true"`
	CreatedBy    uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
