// Package messages carries member-to-member direct messages and the public
// contact form inbox.
package messages

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes messaging operations.
type Service interface {
	Send(ctx context.Context, input SendInput) (*models.Message, error)
	Inbox(ctx context.Context, memberID uuid.UUID, limit, offset int) (*MessagePage, error)
	Sent(ctx context.Context, memberID uuid.UUID, limit, offset int) (*MessagePage, error)
	MarkRead(ctx context.Context, memberID, messageID uuid.UUID) error
	UnreadCount(ctx context.Context, memberID uuid.UUID) (int64, error)

	SubmitContact(ctx context.Context, input ContactInput) (*models.ContactMessage, error)
	ListContact(ctx context.Context, unreadOnly bool, limit, offset int) (*ContactPage, error)
	MarkContactRead(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	members members.Repository
}

// SendInput is a direct message from one member to another.
type SendInput struct {
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	Subject     string
	Content     string
}

// ContactInput is the public contact form payload. MemberID is set when the
// sender was logged in.
type ContactInput struct {
	MemberID *uuid.UUID
	Name     string
	Email    string
	Phone    *string
	Subject  string
	Message  string
}

// MessagePage wraps a direct message page with the total row count.
type MessagePage struct {
	Items []models.Message `json:"items"`
	Total int64            `json:"total"`
}

// ContactPage wraps a contact message page with the total row count.
type ContactPage struct {
	Items []models.ContactMessage `json:"items"`
	Total int64                   `json:"total"`
}

// NewService wires messaging dependencies.
func NewService(repo Repository, memberRepo members.Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "messages repository required")
	}
	if memberRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	return &service{repo: repo, members: memberRepo}, nil
}

func (s *service) Send(ctx context.Context, input SendInput) (*models.Message, error) {
	if input.SenderID == uuid.Nil || input.RecipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sender and recipient required")
	}
	if input.SenderID == input.RecipientID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content required")
	}

	if _, err := s.members.GetByID(ctx, input.RecipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load recipient")
	}

	message := &models.Message{
		ID:          uuid.New(),
		SenderID:    input.SenderID,
		RecipientID: input.RecipientID,
		Subject:     strings.TrimSpace(input.Subject),
		Content:     input.Content,
	}
	if err := s.repo.CreateMessage(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create message")
	}
	return message, nil
}

func (s *service) Inbox(ctx context.Context, memberID uuid.UUID, limit, offset int) (*MessagePage, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	rows, total, err := s.repo.ListInbox(ctx, memberID, pagination.NormalizeLimit(limit), offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inbox")
	}
	return &MessagePage{Items: rows, Total: total}, nil
}

func (s *service) Sent(ctx context.Context, memberID uuid.UUID, limit, offset int) (*MessagePage, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	rows, total, err := s.repo.ListSent(ctx, memberID, pagination.NormalizeLimit(limit), offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sent messages")
	}
	return &MessagePage{Items: rows, Total: total}, nil
}

func (s *service) MarkRead(ctx context.Context, memberID, messageID uuid.UUID) error {
	if memberID == uuid.Nil || messageID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "member id and message id required")
	}
	updated, err := s.repo.MarkMessageRead(ctx, memberID, messageID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark message read")
	}
	if !updated {
		// Either missing, not addressed to this member, or already read.
		message, err := s.repo.GetMessage(ctx, messageID)
		if err != nil || message.RecipientID != memberID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
	}
	return nil
}

func (s *service) UnreadCount(ctx context.Context, memberID uuid.UUID) (int64, error) {
	if memberID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	total, err := s.repo.CountUnread(ctx, memberID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread messages")
	}
	return total, nil
}

func (s *service) SubmitContact(ctx context.Context, input ContactInput) (*models.ContactMessage, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subject required")
	}
	if strings.TrimSpace(input.Message) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message required")
	}

	message := &models.ContactMessage{
		ID:       uuid.New(),
		MemberID: input.MemberID,
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Phone:    input.Phone,
		Subject:  strings.TrimSpace(input.Subject),
		Message:  input.Message,
	}
	if err := s.repo.CreateContact(ctx, message); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact message")
	}
	return message, nil
}

func (s *service) ListContact(ctx context.Context, unreadOnly bool, limit, offset int) (*ContactPage, error) {
	rows, total, err := s.repo.ListContact(ctx, unreadOnly, pagination.NormalizeLimit(limit), offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contact messages")
	}
	return &ContactPage{Items: rows, Total: total}, nil
}

func (s *service) MarkContactRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "message id required")
	}
	updated, err := s.repo.MarkContactRead(ctx, id, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark contact message read")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "contact message not found")
	}
	return nil
}
