package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/harambee-coop/membership-backend/internal/activation"
	"github.com/harambee-coop/membership-backend/internal/cron"
	"github.com/harambee-coop/membership-backend/internal/deductions"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/internal/shares"
	"github.com/harambee-coop/membership-backend/pkg/config"
	"github.com/harambee-coop/membership-backend/pkg/db"
	"github.com/harambee-coop/membership-backend/pkg/logger"
	"github.com/harambee-coop/membership-backend/pkg/mailer"
	"github.com/harambee-coop/membership-backend/pkg/metrics"
	"github.com/harambee-coop/membership-backend/pkg/migrate"
	"github.com/harambee-coop/membership-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	defer func() {
		if err := multierr.Combine(dbClient.Close(), redisClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing clients", err)
		}
	}()

	memberRepo := members.NewRepository(dbClient.DB())
	shareRepo := shares.NewRepository(dbClient.DB())
	deductionRepo := deductions.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())

	engine, err := activation.NewEngine(cfg.Shares.ActivationThreshold)
	if err != nil {
		logg.Error(context.Background(), "failed to create activation engine", err)
		os.Exit(1)
	}

	deductionSvc, err := deductions.NewService(deductions.Deps{
		Tx:            dbClient,
		Records:       deductionRepo,
		Members:       memberRepo,
		Shares:        shareRepo,
		Notifications: notificationRepo,
		Engine:        engine,
		Mailer:        mailer.New(cfg.SMTP, logg),
		Logger:        logg,
		MonthlyAmount: cfg.Shares.MonthlyDeduction,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deduction service", err)
		os.Exit(1)
	}

	notificationSvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	deductionJob, err := cron.NewMonthlyDeductionJob(cron.MonthlyDeductionJobParams{
		Logger:     logg,
		Deductions: deductionSvc,
		Admins:     memberRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create deduction job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:        logg,
		Notifications: notificationSvc,
		RetentionDays: cfg.Cron.NotificationRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cleanup job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, cfg.Cron.LockKey, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(deductionJob, cleanupJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
