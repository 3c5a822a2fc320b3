// Package announcements manages organization-wide notices.
package announcements

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes announcement operations. Writes are admin-only, enforced
// at the transport layer.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Announcement, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Announcement, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Announcement, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// CreateInput describes a new announcement.
type CreateInput struct {
	Title     string
	Content   string
	Type      enums.AnnouncementType
	CreatedBy uuid.UUID
}

// UpdateInput carries the admin-editable announcement fields. Nil fields are
// left untouched.
type UpdateInput struct {
	Title    *string
	Content  *string
	IsActive *bool
}

// ListParams filters announcements.
type ListParams struct {
	ActiveOnly bool
	Type       string
	Limit      int
	Offset     int
}

// ListResult wraps an announcements page with the total row count.
type ListResult struct {
	Items []models.Announcement `json:"items"`
	Total int64                 `json:"total"`
}

// NewService wires announcement dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "announcements repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Announcement, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	kind := input.Type
	if kind == "" {
		kind = enums.AnnouncementTypeGeneral
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid announcement type")
	}

	announcement := &models.Announcement{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(input.Title),
		Content:   input.Content,
		Type:      kind,
		IsActive:  true,
		CreatedBy: input.CreatedBy,
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create announcement")
	}
	return announcement, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Announcement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "announcement id required")
	}
	announcement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "announcement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load announcement")
	}
	return announcement, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Announcement, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "announcement id required")
	}

	fields := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		fields["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "content cannot be empty")
		}
		fields["content"] = *input.Content
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update announcement")
		}
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "announcement id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete announcement")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "announcement not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListFilter{
		ActiveOnly: params.ActiveOnly,
		Limit:      pagination.NormalizeLimit(params.Limit),
		Offset:     params.Offset,
	}
	if params.Type != "" {
		kind, err := enums.ParseAnnouncementType(params.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		query.Type = &kind
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list announcements")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
