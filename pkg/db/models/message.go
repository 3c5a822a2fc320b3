package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two members (typically member↔admin).
type Message struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SenderID    uuid.UUID  `gorm:"column:sender_id;type:uuid;not null;index"`
	RecipientID uuid.UUID  `gorm:"column:recipient_id;type:uuid;not null;index"`
	Subject     string     `gorm:"column:subject;not null"`
	Content     string     `gorm:"column:content;type:text;not null"`
	ReadAt      *time.Time `gorm:"column:read_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// ContactMessage is an inbound message from the public contact form.
type ContactMessage struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID  *uuid.UUID `gorm:"column:member_id;type:uuid"`
	Name      string     `gorm:"column:name;not null"`
	Email     string     `gorm:"column:email;not null"`
	Phone     *string    `gorm:"column:phone"`
	Subject   string     `gorm:"column:subject;not null"`
	Message   string     `gorm:"column:message;type:text;not null"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}
