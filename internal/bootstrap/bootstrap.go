// Package bootstrap wires configuration into the services shared by the HTTP
// server and the resumectl CLI.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"resumerefresh/config"
	"resumerefresh/internal/adapters/email"
	delivery "resumerefresh/internal/delivery/http"
	"resumerefresh/internal/delivery/http/controllers"
	"resumerefresh/internal/delivery/http/middleware"
	"resumerefresh/internal/domain"
	"resumerefresh/internal/repository/memory"
	"resumerefresh/internal/repository/postgres"
	"resumerefresh/internal/services"
)

// App is the wired application.
type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *sql.DB
	Channel     domain.MailChannel
	Store       domain.SubmissionStore
	Composer    *services.ContentComposer
	Refresh     domain.ResumeRefreshService
	Bulk        domain.BulkSender
	Submissions domain.SubmissionService
}

// Options selects which parts New wires. The CLI skips the store.
type Options struct {
	WithStore bool
	// Migrate applies embedded migrations after connecting to Postgres.
	Migrate bool
}

// New builds the App from cfg.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	channel, err := email.NewMailer(email.MailerConfig{
		Provider: cfg.Mail.Provider,
		SMTP: email.SMTPConfig{
			Host:               cfg.Mail.SMTP.Host,
			Port:               cfg.Mail.SMTP.Port,
			Username:           cfg.Mail.SMTP.User,
			Password:           cfg.Mail.SMTP.Pass,
			Secure:             cfg.Mail.SMTP.Secure,
			InsecureSkipVerify: cfg.Mail.SMTP.InsecureSkipVerify,
			PoolSize:           cfg.Mail.SMTP.PoolSize,
			ConnectTimeout:     cfg.Mail.SMTP.ConnectTimeout,
			GreetingTimeout:    cfg.Mail.SMTP.GreetingTimeout,
			SocketTimeout:      cfg.Mail.SMTP.SocketTimeout,
		},
		SES: email.SESConfig{
			Region:             cfg.Mail.SES.Region,
			AccessKeyID:        cfg.Mail.SES.AccessKeyID,
			SecretAccessKey:    cfg.Mail.SES.SecretAccessKey,
			InsecureSkipVerify: cfg.Mail.SES.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create mail channel: %w", err)
	}
	app.Channel = channel

	domains := cfg.AMP.Domains
	if len(domains) == 0 {
		domains = services.DefaultAMPDomains
	}
	classifier := services.NewCapabilityClassifier(domains, logger)
	app.Composer = services.NewContentComposer(email.NewTemplateRenderer(), services.ProfileDefaults{
		CompanyName: cfg.DefaultCompanyName,
	})
	dispatcher := services.NewDispatcher(
		channel,
		services.NewRetryPolicy(cfg.Mail.RetryAttempts, cfg.Mail.RetryBaseDelay),
		services.Sender{Address: cfg.Mail.FromAddress, Name: cfg.Mail.FromName},
		logger,
	)
	app.Refresh = services.NewResumeRefreshService(classifier, app.Composer, dispatcher, cfg.ServerURL, logger)
	app.Bulk = services.NewBulkSender(app.Refresh, cfg.Mail.BulkSendInterval, logger)

	if opts.WithStore {
		if err := app.openStore(ctx, opts.Migrate); err != nil {
			_ = app.Close()
			return nil, err
		}
		app.Submissions = services.NewSubmissionService(app.Store, logger)
	}
	return app, nil
}

func (a *App) openStore(ctx context.Context, migrate bool) error {
	if a.Config.StoreBackend == config.StoreMemory {
		a.Logger.Warn("using in-memory submission store; submissions are lost on restart")
		a.Store = memory.NewSubmissionRepository()
		return nil
	}
	db, err := OpenDB(ctx, a.Config.DBUrl)
	if err != nil {
		return err
	}
	a.DB = db
	if migrate {
		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		a.Logger.Info("migrations applied", "files", applied)
	}
	a.Store = postgres.NewSubmissionRepository(db)
	return nil
}

// OpenDB opens and pings a Postgres pool.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// Handler builds the HTTP handler. Requires a store.
func (a *App) Handler() http.Handler {
	cfg := a.Config
	origins := cfg.AMP.TrustedOrigins
	if len(origins) == 0 {
		origins = middleware.DefaultAMPTrustedOrigins
	}
	policy := middleware.NewAMPOriginPolicy(origins, !cfg.IsProduction(), cfg.Mail.FromAddress)
	return delivery.NewRouter(
		delivery.RouterConfig{Logger: a.Logger, AMPPolicy: policy, CORSOrigins: cfg.CORSOrigins},
		controllers.NewSubmissionController(a.Logger, a.Submissions),
		controllers.NewFormController(a.Logger, a.Composer, a.Submissions),
		controllers.NewDispatchController(a.Logger, a.Refresh, a.Bulk, cfg.ServerURL),
		controllers.NewHealthController(cfg.Environment, cfg.ServerURL),
	)
}

// Close releases the mail channel and database.
func (a *App) Close() error {
	var errs []error
	if a.Channel != nil {
		errs = append(errs, a.Channel.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
