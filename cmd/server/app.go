package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/montesion/montesion-api/internal/config"
	"github.com/montesion/montesion-api/internal/platform/mail"
	"github.com/montesion/montesion-api/internal/platform/metrics"
	"github.com/montesion/montesion-api/internal/platform/postgres"
	"github.com/montesion/montesion-api/internal/service"
	"github.com/montesion/montesion-api/internal/service/auth"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	metrics *metrics.Recorder

	accountService service.AccountService
	prayerService  service.PrayerService
}

// newApplication creates a new application instance with all dependencies initialized.
// The database connection must already be established.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.NewRecorder(),
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"login_token_lifetime", cfg.Auth.LoginTokenLifetime.String())

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)

	userStore := postgres.NewPostgresUserStore(db, logger)
	prayerStore := postgres.NewPostgresPrayerRequestStore(db, logger)

	mailer := mail.NewSMTPSender(cfg.Mail, logger)
	if !cfg.Mail.Enabled() {
		logger.Warn("mail relay not configured, notification emails will fail",
			"host", cfg.Mail.Host)
	}

	location, err := time.LoadLocation(cfg.Prayer.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load prayer timezone: %w", err)
	}

	app.accountService, err = service.NewAccountService(
		db,
		userStore,
		hasher,
		jwtService,
		mailer,
		service.AccountOptions{
			LoginTokenLifetime: cfg.Auth.LoginTokenLifetime,
			Metrics:            app.metrics,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account service: %w", err)
	}

	app.prayerService, err = service.NewPrayerService(
		db,
		prayerStore,
		service.NewTicketAllocator(logger),
		mailer,
		service.PrayerOptions{
			Location: location,
			Sender:   mailer.From(),
			Metrics:  app.metrics,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prayer service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns when ctx is canceled and the server has shut down, or when the
// server fails.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
