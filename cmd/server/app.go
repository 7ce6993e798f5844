package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/dropit-api/internal/config"
	"github.com/iliyamo/dropit-api/internal/database"
	"github.com/iliyamo/dropit-api/internal/handler"
	"github.com/iliyamo/dropit-api/internal/metrics"
	"github.com/iliyamo/dropit-api/internal/middleware"
	"github.com/iliyamo/dropit-api/internal/notify"
	"github.com/iliyamo/dropit-api/internal/queue"
	"github.com/iliyamo/dropit-api/internal/repository"
	"github.com/iliyamo/dropit-api/internal/router"
	"github.com/iliyamo/dropit-api/internal/service"
)

func runServe(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return err
	}

	auth, err := service.NewAuthService(store, notifier, service.Options{
		JWTSecret:       cfg.JWTSecret,
		SessionTTL:      cfg.AccessTTL,
		BcryptCost:      cfg.BcryptCost,
		VerificationTTL: cfg.VerificationTTL,
		PhoneRegion:     cfg.PhoneRegion,
	}, logger)
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(cfg.Redis, logger)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	m := metrics.New()
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(m.Middleware())

	router.RegisterRoutes(e, m)
	router.RegisterAuth(e, handler.NewAuthHandler(auth, m, logger), cfg.JWTSecret,
		middleware.NewTokenBucket(cfg.RateLimit, rdb, logger))

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "env", cfg.Env, "store", cfg.DB.Driver, "mail", cfg.Mail.Transport)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the account store selected by DB_DRIVER and a func
// releasing it.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.AccountStore, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		logger.Warn("using in-memory account store; data is lost on exit")
		return repository.NewMemoryAccountRepo(), func() {}, nil
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(ctx, db.DB); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}
	return repository.NewAccountRepo(db), func() { _ = db.Close() }, nil
}

// buildNotifier wires the mail transport selected by MAIL_TRANSPORT.
func buildNotifier(cfg config.Config, logger *slog.Logger) (*notify.Notifier, error) {
	var sender notify.Sender
	switch cfg.Mail.Transport {
	case config.MailSMTP:
		s, err := notify.NewSMTPSender(smtpConfig(cfg))
		if err != nil {
			return nil, err
		}
		sender = s
	case config.MailQueue:
		sender = notify.NewQueueSender(queue.NewPublisher(cfg.Mail.RabbitURL, cfg.Mail.Queue, logger))
	default:
		sender = notify.NewLogSender(logger)
	}
	return notify.NewNotifier(notify.NewRenderer("DropIt", cfg.FrontendURL), sender, logger), nil
}

func smtpConfig(cfg config.Config) notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:     cfg.Mail.SMTPHost,
		Port:     cfg.Mail.SMTPPort,
		Username: cfg.Mail.SMTPUsername,
		Password: cfg.Mail.SMTPPassword,
		From:     cfg.Mail.SMTPFrom,
		FromName: cfg.Mail.SMTPFromName,
		TLS:      cfg.Mail.SMTPTLS,
	}
}

func runMigrate(ctx context.Context, cfg config.Config, direction string) error {
	if cfg.DB.Driver != config.DriverMySQL {
		return fmt.Errorf("migrations need DB_DRIVER=mysql, got %q", cfg.DB.Driver)
	}
	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	switch direction {
	case "up":
		return database.MigrateUp(ctx, db.DB)
	case "down":
		return database.MigrateDown(ctx, db.DB)
	default:
		return database.MigrateStatus(ctx, db.DB)
	}
}

func runMailer(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	logger := slog.Default()

	sender, err := notify.NewSMTPSender(smtpConfig(cfg))
	if err != nil {
		return fmt.Errorf("mailer: %w", err)
	}
	err = queue.StartMailConsumer(ctx, cfg.Mail.RabbitURL, cfg.Mail.Queue, sender.DeliverEvent, logger)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
