// Package applications handles single and double family membership
// applications. Approval stamps the application's type onto the member's
// profile as their membership type.
package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes membership application operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.MembershipApplication, error)
	Review(ctx context.Context, input ReviewInput) (*models.MembershipApplication, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx      TxRunner
	repo    Repository
	members members.Repository
}

// Deps carries the service dependencies.
type Deps struct {
	Tx      TxRunner
	Repo    Repository
	Members members.Repository
}

// SubmitInput is the membership application form payload.
type SubmitInput struct {
	MemberID      uuid.UUID
	Type          enums.ApplicationType
	FirstName     string
	MiddleName    *string
	LastName      string
	Email         string
	Address       string
	Phone         string
	IDDocument    *string
	Spouse        *string
	SpousePhone   *string
	AuthorizedRep *string
	Children      []string
	Parents       []string
	Siblings      []string
}

// ReviewInput is an admin decision on a pending application.
type ReviewInput struct {
	ApplicationID uuid.UUID
	ActorID       uuid.UUID
	Decision      enums.ReviewDecision
	AdminNote     *string
}

// ListParams filters applications. MemberID nil lists across all members.
type ListParams struct {
	MemberID *uuid.UUID
	Status   string
	Limit    int
	Offset   int
}

// ListResult wraps an applications page with the total row count.
type ListResult struct {
	Items []models.MembershipApplication `json:"items"`
	Total int64                          `json:"total"`
}

// NewService wires application dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if deps.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "applications repository required")
	}
	if deps.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	return &service{tx: deps.Tx, repo: deps.Repo, members: deps.Members}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.MembershipApplication, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid application type")
	}
	for field, value := range map[string]string{
		"first name": input.FirstName,
		"last name":  input.LastName,
		"email":      input.Email,
		"address":    input.Address,
		"phone":      input.Phone,
	} {
		if strings.TrimSpace(value) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, field+" required")
		}
	}
	// A double family application without a spouse is just a single one.
	if input.Type == enums.ApplicationTypeDouble && (input.Spouse == nil || strings.TrimSpace(*input.Spouse) == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spouse required for a double family application")
	}

	if _, err := s.members.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	pending, err := s.repo.HasPending(ctx, input.MemberID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending applications")
	}
	if pending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending application already exists")
	}

	application := &models.MembershipApplication{
		ID:            uuid.New(),
		MemberID:      input.MemberID,
		Type:          input.Type,
		FirstName:     strings.TrimSpace(input.FirstName),
		MiddleName:    input.MiddleName,
		LastName:      strings.TrimSpace(input.LastName),
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Address:       input.Address,
		Phone:         input.Phone,
		IDDocument:    input.IDDocument,
		Spouse:        input.Spouse,
		SpousePhone:   input.SpousePhone,
		AuthorizedRep: input.AuthorizedRep,
		Children:      input.Children,
		Parents:       input.Parents,
		Siblings:      input.Siblings,
		Status:        enums.ReviewStatusPending,
	}
	if err := s.repo.Create(ctx, application); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create application")
	}
	return application, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.MembershipApplication, error) {
	if input.ApplicationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer id required")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	now := time.Now().UTC()
	var decided *models.MembershipApplication

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		application, err := repo.GetForReview(ctx, input.ApplicationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load application")
		}
		if application.Status.IsDecided() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "application already decided")
		}

		application.Status = input.Decision.Status()
		application.AdminNote = input.AdminNote
		application.ReviewedBy = &input.ActorID
		application.ReviewedAt = &now
		application.UpdatedAt = now
		if err := repo.UpdateReview(ctx, application); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update application")
		}

		if application.Status == enums.ReviewStatusApproved {
			membershipType := string(application.Type)
			fields := map[string]any{
				"membership_type": membershipType,
				"updated_at":      now,
			}
			if err := s.members.WithTx(tx).UpdateProfile(ctx, application.MemberID, fields); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set membership type")
			}
		}

		decided = application
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	query := ListFilter{
		MemberID: params.MemberID,
		Limit:    pagination.NormalizeLimit(params.Limit),
		Offset:   params.Offset,
	}
	if params.Status != "" {
		status, err := enums.ParseReviewStatus(params.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list applications")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
