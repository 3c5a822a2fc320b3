package cron

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harambee-coop/membership-backend/internal/deductions"
	"github.com/harambee-coop/membership-backend/pkg/logger"
)

// deductionRunner is the slice of the deduction service the job needs.
type deductionRunner interface {
	RunScheduled(ctx context.Context, actorID uuid.UUID) (*deductions.RunResult, error)
}

// adminDirectory resolves the acting admin for unattended runs.
type adminDirectory interface {
	ListAdminIDs(ctx context.Context) ([]uuid.UUID, error)
}

// MonthlyDeductionJobParams configure the monthly deduction job.
type MonthlyDeductionJobParams struct {
	Logger     *logger.Logger
	Deductions deductionRunner
	Admins     adminDirectory
}

// NewMonthlyDeductionJob builds the job that applies the monthly share
// deduction. The run is attributed to the first admin on record.
func NewMonthlyDeductionJob(params MonthlyDeductionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Deductions == nil {
		return nil, fmt.Errorf("deduction service required")
	}
	if params.Admins == nil {
		return nil, fmt.Errorf("admin directory required")
	}
	return &monthlyDeductionJob{
		logg:       params.Logger,
		deductions: params.Deductions,
		admins:     params.Admins,
	}, nil
}

type monthlyDeductionJob struct {
	logg       *logger.Logger
	deductions deductionRunner
	admins     adminDirectory
}

func (j *monthlyDeductionJob) Name() string { return "monthly-deduction" }

func (j *monthlyDeductionJob) Run(ctx context.Context) error {
	adminIDs, err := j.admins.ListAdminIDs(ctx)
	if err != nil {
		return fmt.Errorf("resolve acting admin: %w", err)
	}
	if len(adminIDs) == 0 {
		return fmt.Errorf("no admin account to attribute the deduction run to")
	}

	result, err := j.deductions.RunScheduled(ctx, adminIDs[0])
	if err != nil {
		return fmt.Errorf("monthly deduction: %w", err)
	}
	if result.Skipped {
		j.logg.Info(ctx, "monthly deduction already recorded for this month, skipping")
		return nil
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"members_affected": result.MembersAffected,
		"deactivated":      result.Deactivated,
	})
	if result.Record == nil {
		j.logg.Info(logCtx, "monthly deduction found no eligible members")
		return nil
	}
	logCtx = j.logg.WithFields(logCtx, map[string]any{
		"shares_deducted":  result.Record.SharesDeducted,
		"remaining_shares": result.Record.TotalRemainingShares,
	})
	j.logg.Info(logCtx, "monthly deduction complete")
	return nil
}
