package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/harambee-coop/membership-backend/pkg/logger"
)

const notificationRetentionDays = 90

// notificationPurger is the slice of the notifications service the job needs.
type notificationPurger interface {
	PurgeOlderThan(ctx context.Context, retention time.Duration) (int64, error)
}

// NotificationCleanupJobParams configure the notification cleanup job.
type NotificationCleanupJobParams struct {
	Logger        *logger.Logger
	Notifications notificationPurger
	RetentionDays int
}

// NewNotificationCleanupJob builds the job that deletes old read notifications.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = notificationRetentionDays
	}
	return &notificationCleanupJob{
		logg:      params.Logger,
		notifs:    params.Notifications,
		retention: retention,
	}, nil
}

type notificationCleanupJob struct {
	logg      *logger.Logger
	notifs    notificationPurger
	retention int
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	retention := time.Duration(j.retention) * 24 * time.Hour
	deleted, err := j.notifs.PurgeOlderThan(ctx, retention)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"retention_days": j.retention,
		"rows_deleted":   deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
