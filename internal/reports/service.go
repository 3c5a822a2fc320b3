// Package reports assembles admin dashboard aggregates from the other
// domains. Everything here is read-only.
package reports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/harambee-coop/membership-backend/internal/claims"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/payments"
	"github.com/harambee-coop/membership-backend/internal/shares"
	"github.com/harambee-coop/membership-backend/pkg/enums"
	pkgerrors "github.com/harambee-coop/membership-backend/pkg/errors"
)

// Service exposes dashboard reports.
type Service interface {
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	members  members.Repository
	shares   shares.Repository
	payments payments.Repository
	claims   claims.Repository
}

// Deps carries the service dependencies.
type Deps struct {
	Members  members.Repository
	Shares   shares.Repository
	Payments payments.Repository
	Claims   claims.Repository
}

// MemberReport breaks the membership down by activation status.
type MemberReport struct {
	Total      int64 `json:"total"`
	Registered int64 `json:"registered"`
	Active     int64 `json:"active"`
	Inactive   int64 `json:"inactive"`
}

// SharesReport covers the ledger and the cached balances.
type SharesReport struct {
	TotalOwned     int   `json:"totalOwned"`
	TotalApproved  int   `json:"totalApproved"`
	PendingEntries int64 `json:"pendingEntries"`
}

// FinancialReport covers reviewed payments.
type FinancialReport struct {
	ApprovedAmount  decimal.Decimal `json:"approvedAmount"`
	PendingPayments int64           `json:"pendingPayments"`
}

// ClaimsReport breaks claims down by review status.
type ClaimsReport struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// Summary is the admin dashboard payload.
type Summary struct {
	Members   MemberReport    `json:"members"`
	Shares    SharesReport    `json:"shares"`
	Financial FinancialReport `json:"financial"`
	Claims    ClaimsReport    `json:"claims"`
}

// NewService wires report dependencies.
func NewService(deps Deps) (Service, error) {
	if deps.Members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "members repository required")
	}
	if deps.Shares == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "share ledger repository required")
	}
	if deps.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments repository required")
	}
	if deps.Claims == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "claims repository required")
	}
	return &service{
		members:  deps.Members,
		shares:   deps.Shares,
		payments: deps.Payments,
		claims:   deps.Claims,
	}, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	memberCounts, err := s.members.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}

	totalOwned, err := s.members.SumAllShares(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum owned shares")
	}

	totalApproved, err := s.shares.SumApprovedAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved shares")
	}

	ledgerCounts, err := s.shares.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count ledger entries")
	}

	approvedAmount, err := s.payments.SumApprovedAmount(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum approved payments")
	}

	paymentCounts, err := s.payments.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payments")
	}

	claimCounts, err := s.claims.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count claims")
	}

	summary := &Summary{
		Members: MemberReport{
			Registered: memberCounts[enums.MemberStatusRegistered],
			Active:     memberCounts[enums.MemberStatusActive],
			Inactive:   memberCounts[enums.MemberStatusInactive],
		},
		Shares: SharesReport{
			TotalOwned:     totalOwned,
			TotalApproved:  totalApproved,
			PendingEntries: ledgerCounts[enums.ReviewStatusPending],
		},
		Financial: FinancialReport{
			ApprovedAmount:  approvedAmount,
			PendingPayments: paymentCounts[enums.ReviewStatusPending],
		},
		Claims: ClaimsReport{
			Pending:  claimCounts[enums.ReviewStatusPending],
			Approved: claimCounts[enums.ReviewStatusApproved],
			Rejected: claimCounts[enums.ReviewStatusRejected],
		},
	}
	summary.Members.Total = summary.Members.Registered + summary.Members.Active + summary.Members.Inactive
	return summary, nil
}
