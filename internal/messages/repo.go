package messages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
)

// Repository exposes persistence helpers for direct and contact messages.
type Repository interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]models.Message, int64, error)
	ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Message, int64, error)
	MarkMessageRead(ctx context.Context, recipientID, messageID uuid.UUID, now time.Time) (bool, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)

	CreateContact(ctx context.Context, message *models.ContactMessage) error
	ListContact(ctx context.Context, unreadOnly bool, limit, offset int) ([]models.ContactMessage, int64, error)
	MarkContactRead(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
}

type repositoryImpl struct {
	db *gorm.DB
}

// NewRepository returns a messages repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (r *repositoryImpl) ListInbox(ctx context.Context, recipientID uuid.UUID, limit, offset int) ([]models.Message, int64, error) {
	return r.listMessages(ctx, "recipient_id = ?", recipientID, limit, offset)
}

func (r *repositoryImpl) ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]models.Message, int64, error) {
	return r.listMessages(ctx, "sender_id = ?", senderID, limit, offset)
}

func (r *repositoryImpl) listMessages(ctx context.Context, cond string, id uuid.UUID, limit, offset int) ([]models.Message, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Message{}).Where(cond, id)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Message
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkMessageRead only touches unread rows owned by the recipient, so a
// second call reports false without rewriting read_at.
func (r *repositoryImpl) MarkMessageRead(ctx context.Context, recipientID, messageID uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", messageID, recipientID).
		Update("read_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repositoryImpl) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repositoryImpl) CreateContact(ctx context.Context, message *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *repositoryImpl) ListContact(ctx context.Context, unreadOnly bool, limit, offset int) ([]models.ContactMessage, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContactMessage{})
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContactMessage
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *repositoryImpl) MarkContactRead(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", now)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
