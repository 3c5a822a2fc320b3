package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/pkg/enums"
)

// Announcement is an organization-wide notice posted by an admin.
type Announcement struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title     string                 `gorm:"column:title;not null"`
	Content   string                 `gorm:"column:content;type:text;not null"`
	Type      enums.AnnouncementType `gorm:"column:type;type:announcement_type;not null;default:'general'"`
	IsActive  bool                   `gorm:"column:is_active;not null;default:true"`
	CreatedBy uuid.UUID              `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
