// Package shares owns the share purchase ledger. Entries append as pending,
// receive exactly one admin decision, and only approved entries count toward
// a member's balance.
package shares

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/activation"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/pkg/db"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
	"github.com/harambee-coop/membership-backend/pkg/mailer"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes share ledger operations.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.ShareLedgerEntry, error)
	Review(ctx context.Context, input ReviewInput) (*ReviewResult, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Balance(ctx context.Context, memberID uuid.UUID) (*BalanceSummary, error)
	Refresh(ctx context.Context, memberID uuid.UUID) (*BalanceSummary, error)
}

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx        TxRunner
	repo      Repository
	members   members.Repository
	notifs    notifications.Repository
	engine    *activation.Engine
	mail      mailer.Mailer
	logg      *logger.Logger
	unitPrice decimal.Decimal
}

// Deps carries the service dependencies.
type Deps struct {
	Tx            TxRunner
	Repo          Repository
	Members       members.Repository
	Notifications notifications.Repository
	Engine        *activation.Engine
	Mailer        mailer.Mailer
	Logger        *logger.Logger
	UnitPrice     string
}

// SubmitInput is a member's share purchase request.
type SubmitInput struct {
	MemberID      uuid.UUID
	Shares        int
	PaymentMethod *string
	TransactionID *string
	PaymentProof  *string
	Notes         *string
}

// ReviewInput is an admin decision on a pending entry.
type ReviewInput struct {
	EntryID   uuid.UUID
	ActorID   uuid.UUID
	Decision  enums.ReviewDecision
	AdminNote *string
}

// ReviewResult reports the decided entry plus any status transition the
// approval caused.
type ReviewResult struct {
	Entry      *models.ShareLedgerEntry `json:"entry"`
	Balance    int                      `json:"balance"`
	Transition activation.Transition    `json:"transition"`
	NewStatus  enums.MemberStatus       `json:"newStatus"`
}

// ListParams filters ledger entries. MemberID nil lists across all members.
type ListParams struct {
	MemberID *uuid.UUID
	Status   string
	Limit    int
	Offset   int
}

// ListResult wraps a ledger page with the total row count.
type ListResult struct {
	Items []models.ShareLedgerEntry `json:"items"`
	Total int64                     `json:"total"`
}

// BalanceSummary is the member-facing view of their holdings. Color follows
// the dashboard convention: red at or below the threshold, yellow within
// five shares above it, green beyond that.
type BalanceSummary struct {
	SharesOwned int                `json:"sharesOwned"`
	UnitPrice   decimal.Decimal    `json:"unitPrice"`
	TotalValue  decimal.Decimal    `json:"totalValue"`
	Status      enums.MemberStatus `json:"status"`
	Color       string             `json:"color"`
}

// NewService wires share ledger dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if deps.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "share ledger repository required")
	}
	if deps.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if deps.Notifications == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	if deps.Engine == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activation engine required")
	}
	if deps.Mailer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "mailer required")
	}

	unitPrice, err := decimal.NewFromString(deps.UnitPrice)
	if err != nil || unitPrice.IsNegative() || unitPrice.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "share unit price must be a positive decimal")
	}

	return &service{
		tx:        deps.Tx,
		repo:      deps.Repo,
		members:   deps.Members,
		notifs:    deps.Notifications,
		engine:    deps.Engine,
		mail:      deps.Mailer,
		logg:      deps.Logger,
		unitPrice: unitPrice,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.ShareLedgerEntry, error) {
	if input.MemberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	if input.Shares <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shares must be a positive integer")
	}

	if _, err := s.members.GetByID(ctx, input.MemberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	entry := &models.ShareLedgerEntry{
		ID:              uuid.New(),
		MemberID:        input.MemberID,
		SharesRequested: input.Shares,
		AmountPaid:      s.unitPrice.Mul(decimal.NewFromInt(int64(input.Shares))),
		PaymentMethod:   input.PaymentMethod,
		TransactionID:   input.TransactionID,
		PaymentProof:    input.PaymentProof,
		Notes:           input.Notes,
		Status:          enums.ReviewStatusPending,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create ledger entry")
	}
	return entry, nil
}

func (s *service) Review(ctx context.Context, input ReviewInput) (*ReviewResult, error) {
	if input.EntryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewer id required")
	}
	if !input.Decision.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	now := time.Now().UTC()
	result := &ReviewResult{Transition: activation.TransitionNone}
	var outbound *activation.OutboundEmail

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		entry, err := repo.GetForReview(ctx, input.EntryID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger entry")
		}
		if entry.Status.IsDecided() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "ledger entry already decided")
		}

		entry.Status = input.Decision.Status()
		entry.AdminNote = input.AdminNote
		entry.ReviewedBy = &input.ActorID
		entry.ReviewedAt = &now
		entry.UpdatedAt = now
		if err := repo.UpdateReview(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update ledger entry")
		}
		result.Entry = entry

		// Rejection leaves the balance untouched; only approval changes
		// what the ledger sums to.
		if entry.Status != enums.ReviewStatusApproved {
			return nil
		}

		// The row lock serializes concurrent approvals for the same member:
		// the recompute below must not run until the other reviewer's
		// approval has committed.
		memberRepo := s.members.WithTx(tx)
		member, err := memberRepo.GetForUpdate(ctx, entry.MemberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}

		balance, err := repo.SumApproved(ctx, entry.MemberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute balance")
		}

		outcome, err := s.engine.Reconcile(ctx, s.notifs.WithTx(tx), member, balance, now)
		if err != nil {
			return err
		}
		if err := memberRepo.SaveBalanceAndStatus(ctx, member.ID, member.SharesOwned, member.Status, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist member balance")
		}

		result.Balance = balance
		result.Transition = outcome.Transition
		result.NewStatus = member.Status
		outbound = outcome.Email
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Email goes out only after the transaction committed. Delivery failures
	// are logged and swallowed.
	if outbound != nil {
		if mailErr := s.mail.Send(ctx, outbound.To, outbound.Subject, outbound.Body); mailErr != nil && s.logg != nil {
			s.logg.Error(ctx, "deactivation email failed", mailErr)
		}
	}

	return result, nil
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
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return &ListResult{Items: rows, Total: total}, nil
}

func (s *service) Balance(ctx context.Context, memberID uuid.UUID) (*BalanceSummary, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}

	return &BalanceSummary{
		SharesOwned: member.SharesOwned,
		UnitPrice:   s.unitPrice,
		TotalValue:  s.unitPrice.Mul(decimal.NewFromInt(int64(member.SharesOwned))),
		Status:      member.Status,
		Color:       s.balanceColor(member.SharesOwned),
	}, nil
}

// Refresh recomputes the member's balance from approved ledger entries and
// reconciles their status. Idempotent; repeated calls settle on the same state.
func (s *service) Refresh(ctx context.Context, memberID uuid.UUID) (*BalanceSummary, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	now := time.Now().UTC()
	var summary *BalanceSummary
	var outbound *activation.OutboundEmail

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		memberRepo := s.members.WithTx(tx)
		member, err := memberRepo.GetForUpdate(ctx, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
		}

		balance, err := s.repo.WithTx(tx).SumApproved(ctx, memberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute balance")
		}

		outcome, err := s.engine.Reconcile(ctx, s.notifs.WithTx(tx), member, balance, now)
		if err != nil {
			return err
		}
		if err := memberRepo.SaveBalanceAndStatus(ctx, member.ID, member.SharesOwned, member.Status, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist member balance")
		}

		summary = &BalanceSummary{
			SharesOwned: member.SharesOwned,
			UnitPrice:   s.unitPrice,
			TotalValue:  s.unitPrice.Mul(decimal.NewFromInt(int64(member.SharesOwned))),
			Status:      member.Status,
			Color:       s.balanceColor(member.SharesOwned),
		}
		outbound = outcome.Email
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outbound != nil {
		if mailErr := s.mail.Send(ctx, outbound.To, outbound.Subject, outbound.Body); mailErr != nil && s.logg != nil {
			s.logg.Error(ctx, "deactivation email failed", mailErr)
		}
	}

	return summary, nil
}

func (s *service) balanceColor(shares int) string {
	threshold := s.engine.Threshold()
	switch {
	case shares <= threshold:
		return "red"
	case shares < threshold+5:
		return "yellow"
	default:
		return "green"
	}
}

// ensure db.Client satisfies TxRunner
var _ TxRunner = (*db.Client)(nil)
