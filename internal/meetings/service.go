// Package meetings manages the organization meeting schedule.
package meetings

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

// Service exposes meeting operations. Create, Update and Delete are
// admin-only, enforced at the transport layer.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Meeting, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Meeting, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Meeting, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	repo Repository
}

// CreateInput describes a new meeting.
type CreateInput struct {
	Title        string
	Description  *string
	StartsAt     time.Time
	Location     string
	Type         enums.MeetingType
	MaxAttendees *int
	CreatedBy    uuid.UUID
}

// UpdateInput carries the admin-editable meeting fields. Nil fields are left
// untouched.
type UpdateInput struct {
	Title        *string
	Description  *string
	StartsAt     *time.Time
	Location     *string
	MaxAttendees *int
	IsActive     *bool
}

// ListParams filters the meeting schedule.
type ListParams struct {
	ActiveOnly   bool
	UpcomingOnly bool
	Limit        int
	Offset       int
}

// ListResult wraps a meetings page with the total row count.
type ListResult struct {
	Items []models.Meeting `json:"items"`
	Total int64            `json:"total"`
}

// NewService wires meeting dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "meetings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Meeting, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if strings.TrimSpace(input.Location) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location required")
	}
	if input.StartsAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start time required")
	}
	if input.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}
	kind := input.Type
	if kind == "" {
		kind = enums.MeetingTypeGeneral
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid meeting type")
	}
	if input.MaxAttendees != nil && *input.MaxAttendees <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max attendees must be positive")
	}

	meeting := &models.Meeting{
		ID:           uuid.New(),
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		StartsAt:     input.StartsAt,
		Location:     strings.TrimSpace(input.Location),
		Type:         kind,
		MaxAttendees: input.MaxAttendees,
		IsActive:     true,
		CreatedBy:    input.CreatedBy,
	}
	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create meeting")
	}
	return meeting, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Meeting, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meeting id required")
	}
	meeting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "meeting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load meeting")
	}
	return meeting, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Meeting, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "meeting id required")
	}

	fields := map[string]any{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		fields["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		fields["description"] = *input.Description
	}
	if input.StartsAt != nil {
		fields["starts_at"] = *input.StartsAt
	}
	if input.Location != nil {
		if strings.TrimSpace(*input.Location) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location cannot be empty")
		}
		fields["location"] = strings.TrimSpace(*input.Location)
	}
	if input.MaxAttendees != nil {
		if *input.MaxAttendees <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "max attendees must be positive")
		}
		fields["max_attendees"] = *input.MaxAttendees
	}
	if input.IsActive != nil {
		fields["is_active"] = *input.IsActive
	}

	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update meeting")
		}
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "meeting id required")
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete meeting")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "meeting not found")
	}
	return nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListFilter{
		ActiveOnly: params.ActiveOnly,
		Limit:      pagination.NormalizeLimit(params.Limit),
		Offset:     params.Offset,
	}
	if params.UpcomingOnly {
		query.UpcomingAfter = time.Now().UTC()
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list meetings")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
