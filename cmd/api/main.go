package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/harambee-coop/membership-backend/api/routes"
	"github.com/harambee-coop/membership-backend/internal/activation"
	"github.com/harambee-coop/membership-backend/internal/announcements"
	"github.com/harambee-coop/membership-backend/internal/applications"
	"github.com/harambee-coop/membership-backend/internal/auth"
	"github.com/harambee-coop/membership-backend/internal/claims"
	"github.com/harambee-coop/membership-backend/internal/deductions"
	"github.com/harambee-coop/membership-backend/internal/meetings"
	"github.com/harambee-coop/membership-backend/internal/members"
	"github.com/harambee-coop/membership-backend/internal/messages"
	"github.com/harambee-coop/membership-backend/internal/notifications"
	"github.com/harambee-coop/membership-backend/internal/payments"
	"github.com/harambee-coop/membership-backend/internal/reports"
	"github.com/harambee-coop/membership-backend/internal/shares"
	"github.com/harambee-coop/membership-backend/pkg/config"
	"github.com/harambee-coop/membership-backend/pkg/db"
	"github.com/harambee-coop/membership-backend/pkg/logger"
	"github.com/harambee-coop/membership-backend/pkg/mailer"
	"github.com/harambee-coop/membership-backend/pkg/migrate"
	"github.com/harambee-coop/membership-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	svcs, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	addr := ":" + cfg.App.Port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, svcs),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server shut down gracefully")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	memberRepo := members.NewRepository(gormDB)
	shareRepo := shares.NewRepository(gormDB)
	deductionRepo := deductions.NewRepository(gormDB)
	notificationRepo := notifications.NewRepository(gormDB)
	claimRepo := claims.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	applicationRepo := applications.NewRepository(gormDB)
	meetingRepo := meetings.NewRepository(gormDB)
	announcementRepo := announcements.NewRepository(gormDB)
	messageRepo := messages.NewRepository(gormDB)

	engine, err := activation.NewEngine(cfg.Shares.ActivationThreshold)
	if err != nil {
		return routes.Services{}, err
	}

	mail := mailer.New(cfg.SMTP, logg)

	authSvc, err := auth.NewService(auth.Deps{
		Members:  memberRepo,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Logger:   logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	memberSvc, err := members.NewService(members.Deps{
		Repo:          memberRepo,
		Tx:            dbClient,
		Notifications: notificationRepo,
		Engine:        engine,
		Mailer:        mail,
		Logger:        logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	shareSvc, err := shares.NewService(shares.Deps{
		Tx:            dbClient,
		Repo:          shareRepo,
		Members:       memberRepo,
		Notifications: notificationRepo,
		Engine:        engine,
		Mailer:        mail,
		Logger:        logg,
		UnitPrice:     cfg.Shares.UnitPrice,
	})
	if err != nil {
		return routes.Services{}, err
	}

	deductionSvc, err := deductions.NewService(deductions.Deps{
		Tx:            dbClient,
		Records:       deductionRepo,
		Members:       memberRepo,
		Shares:        shareRepo,
		Notifications: notificationRepo,
		Engine:        engine,
		Mailer:        mail,
		Logger:        logg,
		MonthlyAmount: cfg.Shares.MonthlyDeduction,
	})
	if err != nil {
		return routes.Services{}, err
	}

	notificationSvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		return routes.Services{}, err
	}

	claimSvc, err := claims.NewService(claims.Deps{
		Tx:            dbClient,
		Repo:          claimRepo,
		Members:       memberRepo,
		Notifications: notificationRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	paymentSvc, err := payments.NewService(payments.Deps{
		Tx:      dbClient,
		Repo:    paymentRepo,
		Members: memberRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	applicationSvc, err := applications.NewService(applications.Deps{
		Tx:      dbClient,
		Repo:    applicationRepo,
		Members: memberRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	meetingSvc, err := meetings.NewService(meetingRepo)
	if err != nil {
		return routes.Services{}, err
	}

	announcementSvc, err := announcements.NewService(announcementRepo)
	if err != nil {
		return routes.Services{}, err
	}

	messageSvc, err := messages.NewService(messageRepo, memberRepo)
	if err != nil {
		return routes.Services{}, err
	}

	reportSvc, err := reports.NewService(reports.Deps{
		Members:  memberRepo,
		Shares:   shareRepo,
		Payments: paymentRepo,
		Claims:   claimRepo,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:          authSvc,
		Members:       memberSvc,
		Shares:        shareSvc,
		Deductions:    deductionSvc,
		Notifications: notificationSvc,
		Claims:        claimSvc,
		Payments:      paymentSvc,
		Applications:  applicationSvc,
		Meetings:      meetingSvc,
		Announcements: announcementSvc,
		Messages:      messageSvc,
		Reports:       reportSvc,
	}, nil
}
