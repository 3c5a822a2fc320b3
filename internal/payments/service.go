// Package payments tracks manually reported payments awaiting admin review.
// Payments are bookkeeping only; share purchases go through the share ledger.
package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes payment operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Payment, error)
	Review(ctx context.Context, input ReviewInput) (*models.Payment, error)
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

// SubmitInput is a member's reported payment.
type SubmitInput struct {
	MemberID      uuid.UUID
	Type          enums.PaymentType
	Amount        decimal.Decimal
	Method        enums.PaymentMethod
	TransactionID *string
	Description   *string
	PaymentProof  *string
}

// ReviewInput is an admin decision on a pending payment.
type ReviewInput struct {
	PaymentID uuid.UUID
	ActorID   uuid.UUID
	Decision  enums.ReviewDecision
	AdminNote *string
}

// ListParams filters payments. MemberID nil lists across all members.
type ListParams struct {
	MemberID *uuid.UUID
	Status   string
	Type     string
	Limit    int
	Offset   int
}

// ListResult wraps a payments page with the total row count.
type ListResult struct {
	Items []models.Payment `json:"items"`
	Total int64            `json:"total"`
}

// NewService wires payment dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if deps.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if deps.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	return &service{tx: deps.Tx, repo: deps.Repo, members: deps.Members}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Payment, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment type")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	if _, err := s.members.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		MemberID:      input.MemberID,
		Type:          input.Type,
		Amount:        input.Amount,
		Method:        input.Method,
		TransactionID: input.TransactionID,
		Description:   input.Description,
		PaymentProof:  input.PaymentProof,
		Status:        enums.ReviewStatusPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
	}
	return payment, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*models.Payment, error) {
	if input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer id required")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	now := time.Now().UTC()
	var decided *models.Payment

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.GetForReview(ctx, input.PaymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment.Status.IsDecided() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already decided")
		}

		payment.Status = input.Decision.Status()
		payment.AdminNote = input.AdminNote
		payment.ReviewedBy = &input.ActorID
		payment.ReviewedAt = &now
		payment.UpdatedAt = now
		if err := repo.UpdateReview(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}
		decided = payment
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
	if params.Type != "" {
		kind, err := enums.ParsePaymentType(params.Type)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter")
		}
		query.Type = &kind
	}

	rows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return &ListResult{Items: rows, Total: total}, nil
}
