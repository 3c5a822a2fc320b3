// Package claims handles benefit claim submission and admin review.
package claims

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes claim operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Claim, error)
	Review(ctx context.Context, input ReviewInput) (*models.Claim, error)
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
	notifs  notifications.Repository
}

// Deps carries the service dependencies.
type Deps struct {
	Tx            TxRunner
	Repo          Repository
	Members       members.Repository
	Notifications notifications.Repository
}

// SubmitInput is a member's benefit claim form.
type SubmitInput struct {
	MemberID            uuid.UUID
	Type                enums.ClaimType
	ClaimantName        string
	Relationship        enums.ClaimRelationship
	IncidentDate        time.Time
	AmountRequested     decimal.Decimal
	Description         string
	SupportingDocuments *string
}

// ReviewInput is an admin decision on a pending claim.
type ReviewInput struct {
	ClaimID   uuid.UUID
	ActorID   uuid.UUID
	Decision  enums.ReviewDecision
	AdminNote *string
}

// ListParams filters claims. MemberID nil lists across all members.
type ListParams struct {
	MemberID *uuid.UUID
	Status   string
	Limit    int
	Offset   int
}

// ListResult wraps a claims page with the total row count.
type ListResult struct {
	Items []models.Claim `json:"items"`
	Total int64          `json:"total"`
}

// NewService wires claim dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if deps.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "claims repository required")
	}
	if deps.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if deps.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{
		tx:      deps.Tx,
		repo:    deps.Repo,
		members: deps.Members,
		notifs:  deps.Notifications,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Claim, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid claim type")
	}
	if !input.Relationship.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid claimant relationship")
	}
	if input.ClaimantName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claimant name required")
	}
	if input.Description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description required")
	}
	if input.IncidentDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "incident date required")
	}
	if !input.AmountRequested.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount requested must be positive")
	}

	member, err := s.members.GetByID(ctx, input.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	claim := &models.Claim{
		ID:                  uuid.New(),
		MemberID:            input.MemberID,
		Type:                input.Type,
		ClaimantName:        input.ClaimantName,
		Relationship:        input.Relationship,
		IncidentDate:        input.IncidentDate,
		AmountRequested:     input.AmountRequested,
		Description:         input.Description,
		SupportingDocuments: input.SupportingDocuments,
		Status:              enums.ReviewStatusPending,
	}

	// The claim and its admin notifications land in one transaction so a
	// failed insert never leaves admins pointed at a missing claim.
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, claim); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create claim")
		}

		adminIDs, err := s.members.WithTx(tx).ListAdminIDs(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list admins")
		}

		notifRepo := s.notifs.WithTx(tx)
		for _, adminID := range adminIDs {
			notification := &models.Notification{
				ID:       uuid.New(),
				MemberID: adminID,
				Type:     enums.NotificationTypeClaimSubmitted,
				Title:    "New Claim Submitted",
				Message: fmt.Sprintf("%s submitted a %s claim for %s.",
					member.FullName(), claim.Type, claim.AmountRequested.StringFixed(2)),
			}
			if err := notifRepo.Create(ctx, notification); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "notify admin")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.Claim, error) {
	if input.ClaimID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "claim id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer id required")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	now := time.Now().UTC()
	var decided *models.Claim

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		claim, err := repo.GetForReview(ctx, input.ClaimID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "claim not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load claim")
		}
		if claim.Status.IsDecided() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "claim already decided")
		}

		claim.Status = input.Decision.Status()
		claim.AdminNote = input.AdminNote
		claim.ReviewedBy = &input.ActorID
		claim.ReviewedAt = &now
		claim.UpdatedAt = now
		if err := repo.UpdateReview(ctx, claim); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update claim")
		}
		decided = claim
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list claims")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
