// Package deductions implements the bulk share deduction engine. A run
// touches every eligible member plus one audit record inside a single
// transaction; it commits whole or not at all.
package deductions

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harambee-coop/membership-backend/internal/activation"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/internal/shares"
	"github.com/harambee-coop/membership-backend/pkg/db/models"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
	"github.com/harambee-coop/membership-backend/pkg/logger"
	"github.com/harambee-coop/membership-backend/pkg/mailer"
	"github.com/harambee-coop/membership-backend/pkg/pagination"
)

// Service exposes the two deduction modes and the audit history.
type Service interface {
	RunScheduled(ctx context.Context, actorID uuid.UUID) (*RunResult, error)
	RunAdHoc(ctx context.Context, input AdHocInput) (*RunResult, error)
	History(ctx context.Context, limit, offset int) (*HistoryResult, error)
}

type service struct {
	tx            shares.TxRunner
	records       Repository
	members       members.Repository
	sharesRepo    shares.Repository
	notifs        notifications.Repository
	engine        *activation.Engine
	mail          mailer.Mailer
	logg          *logger.Logger
	monthlyAmount int
}

// Deps carries the service dependencies.
type Deps struct {
	Tx            shares.TxRunner
	Records       Repository
	Members       members.Repository
	Shares        shares.Repository
	Notifications notifications.Repository
	Engine        *activation.Engine
	Mailer        mailer.Mailer
	Logger        *logger.Logger
	MonthlyAmount int
}

// AdHocInput is the admin-triggered bulk deduction request.
type AdHocInput struct {
	ActorID uuid.UUID
	Reason  string
	Shares  int
}

// RunResult summarizes one committed deduction run. Skipped is set when a
// scheduled run found this month's deduction already recorded and did nothing.
type RunResult struct {
	Record          *models.DeductionRecord `json:"record"`
	MembersAffected int                     `json:"membersAffected"`
	Deactivated     int                     `json:"deactivated"`
	Skipped         bool                    `json:"skipped,omitempty"`
}

// HistoryResult wraps a page of audit records with the total row count.
type HistoryResult struct {
	Items []models.DeductionRecord `json:"items"`
	Total int64                    `json:"total"`
}

// NewService wires deduction engine dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if deps.Records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "deduction records repository required")
	}
	if deps.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if deps.Shares == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "share ledger repository required")
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
	if deps.MonthlyAmount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "monthly deduction amount must be positive")
	}

	return &service{
		tx:            deps.Tx,
		records:       deps.Records,
		members:       deps.Members,
		sharesRepo:    deps.Shares,
		notifs:        deps.Notifications,
		engine:        deps.Engine,
		mail:          deps.Mailer,
		logg:          deps.Logger,
		monthlyAmount: deps.MonthlyAmount,
	}, nil
}

// RunScheduled deducts the monthly amount from every member holding at least
// one share. This mode trusts the stored balance; it does not recompute from
// the ledger. The run is gated on the audit trail: at most one scheduled
// deduction commits per calendar month, so worker restarts and extra ticks
// within the month are no-ops.
func (s *service) RunScheduled(ctx context.Context, actorID uuid.UUID) (*RunResult, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	result := &RunResult{}
	var outbox []activation.OutboundEmail

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		memberRepo := s.members.WithTx(tx)
		notifRepo := s.notifs.WithTx(tx)

		ran, err := s.records.WithTx(tx).ScheduledRunExistsSince(ctx, monthStart)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check for prior scheduled run")
		}
		if ran {
			result.Skipped = true
			return nil
		}

		rows, err := memberRepo.ListForDeduction(ctx, 1)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load members for deduction")
		}

		totalDeducted := 0
		for i := range rows {
			member := &rows[i]
			deducted := min(member.SharesOwned, s.monthlyAmount)
			balance := member.SharesOwned - deducted

			outcome, err := s.engine.Reconcile(ctx, notifRepo, member, balance, now)
			if err != nil {
				return err
			}
			if err := memberRepo.SaveBalanceAndStatus(ctx, member.ID, member.SharesOwned, member.Status, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist member balance")
			}
			if err := notifRepo.Create(ctx, &models.Notification{
				ID:       uuid.New(),
				MemberID: member.ID,
				Type:     enums.NotificationTypeSharesDeducted,
				Title:    "Monthly Share Deduction",
				Message:  deductionMessage(deducted, balance),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deduction notification")
			}

			totalDeducted += deducted
			result.MembersAffected++
			if outcome.Transition == activation.TransitionDeactivated {
				result.Deactivated++
			}
			if outcome.Email != nil {
				outbox = append(outbox, *outcome.Email)
			}
		}

		if totalDeducted == 0 {
			return nil
		}

		totalRemaining, err := memberRepo.SumAllShares(ctx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum remaining shares")
		}

		record := &models.DeductionRecord{
			ID:                   uuid.New(),
			Mode:                 enums.DeductionModeScheduled,
			Reason:               fmt.Sprintf("Monthly automatic deduction - %s", now.Format("January 2006")),
			SharesDeducted:       totalDeducted,
			TotalRemainingShares: totalRemaining,
			MembersAffected:      result.MembersAffected,
			CreatedBy:            actorID,
		}
		if err := s.records.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write deduction record")
		}
		result.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, outbox)
	return result, nil
}

// RunAdHoc recomputes every member's balance from the ledger, subtracts the
// requested amount flooring at zero, and emails every member including those
// whose balance did not change.
func (s *service) RunAdHoc(ctx context.Context, input AdHocInput) (*RunResult, error) {
	if input.ActorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor id required")
	}
	if input.Reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reason required")
	}
	if input.Shares <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shares must be a positive integer")
	}

	now := time.Now().UTC()
	result := &RunResult{}
	var outbox []activation.OutboundEmail
	type deducted struct {
		member  models.Member
		balance int
	}
	var processed []deducted

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		memberRepo := s.members.WithTx(tx)
		notifRepo := s.notifs.WithTx(tx)
		ledger := s.sharesRepo.WithTx(tx)

		rows, err := memberRepo.ListForDeduction(ctx, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load members for deduction")
		}

		totalRemaining := 0
		for i := range rows {
			member := &rows[i]

			current, err := ledger.SumApproved(ctx, member.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recompute member balance")
			}
			balance := max(0, current-input.Shares)

			outcome, err := s.engine.Reconcile(ctx, notifRepo, member, balance, now)
			if err != nil {
				return err
			}
			if err := memberRepo.SaveBalanceAndStatus(ctx, member.ID, member.SharesOwned, member.Status, now); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist member balance")
			}
			if err := notifRepo.Create(ctx, &models.Notification{
				ID:       uuid.New(),
				MemberID: member.ID,
				Type:     enums.NotificationTypeSharesDeducted,
				Title:    "Shares Deducted",
				Message:  fmt.Sprintf("Reason: %s. Deducted: %d shares. Remaining: %d shares.", input.Reason, input.Shares, balance),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create deduction notification")
			}

			totalRemaining += balance
			result.MembersAffected++
			if outcome.Transition == activation.TransitionDeactivated {
				result.Deactivated++
			}
			if outcome.Email != nil {
				outbox = append(outbox, *outcome.Email)
			}
			processed = append(processed, deducted{member: *member, balance: balance})
		}

		record := &models.DeductionRecord{
			ID:                   uuid.New(),
			Mode:                 enums.DeductionModeAdhoc,
			Reason:               input.Reason,
			SharesDeducted:       input.Shares,
			TotalRemainingShares: totalRemaining,
			MembersAffected:      result.MembersAffected,
			CreatedBy:            input.ActorID,
		}
		if err := s.records.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write deduction record")
		}
		result.Record = record
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Every member gets a deduction email, after the run committed and with
	// the final company-wide total.
	totalRemaining := 0
	if result.Record != nil {
		totalRemaining = result.Record.TotalRemainingShares
	}
	for _, p := range processed {
		body := fmt.Sprintf(
			"Dear %s,\n\nShares have been deducted from your account.\nReason: %s\nShares deducted: %d\nRemaining shares: %d\nTotal company shares remaining: %d\n\nThank you.",
			p.member.FirstName, input.Reason, input.Shares, p.balance, totalRemaining,
		)
		outbox = append(outbox, activation.OutboundEmail{
			To:      p.member.Email,
			Subject: "Shares Deducted from Your Account",
			Body:    body,
		})
	}
	s.dispatch(ctx, outbox)

	return result, nil
}

func (s *service) History(ctx context.Context, limit, offset int) (*HistoryResult, error) {
	rows, total, err := s.records.List(ctx, pagination.NormalizeLimit(limit), offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deduction records")
	}
	return &HistoryResult{Items: rows, Total: total}, nil
}

// dispatch sends the collected emails best-effort. Failures are logged and
// never surface to the caller.
func (s *service) dispatch(ctx context.Context, outbox []activation.OutboundEmail) {
	for _, email := range outbox {
		if err := s.mail.Send(ctx, email.To, email.Subject, email.Body); err != nil && s.logg != nil {
			s.logg.Error(ctx, "deduction email failed", err)
		}
	}
}

func deductionMessage(amount, remaining int) string {
	noun := "share has"
	if amount != 1 {
		noun = "shares have"
	}
	return fmt.Sprintf("%d %s been automatically deducted. Remaining shares: %d", amount, noun, remaining)
}
