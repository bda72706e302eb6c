// Package runtime assembles the configured process: database, services,
// HTTP server and background workers.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	app "github.com/zenscore/zenscore/internal/app"
	"github.com/zenscore/zenscore/internal/app/httpapi"
	"github.com/zenscore/zenscore/internal/app/services/auth"
	"github.com/zenscore/zenscore/internal/app/storage/sqlstore"
	"github.com/zenscore/zenscore/internal/config"
	"github.com/zenscore/zenscore/internal/middleware"
	"github.com/zenscore/zenscore/internal/platform/migrations"
	"github.com/zenscore/zenscore/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *sqlx.DB
	app    *app.Application
	server *http.Server
}

// NewLogger builds the process logger from configuration.
func NewLogger(cfg config.LoggingConfig) *logger.Logger {
	return logger.New(logger.LoggingConfig{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	})
}

// OpenDatabase opens the configured database and applies pool settings.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver not configured")
	}
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn not configured")
	}

	db, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	// sqlite keeps its single connection from sqlstore.Open
	if cfg.Driver != "sqlite" {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	}
	return db, nil
}

// NewApplication constructs the process from cfg. A nil log is built from
// the logging configuration.
func NewApplication(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if log == nil {
		log = NewLogger(cfg.Logging)
	}

	db, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := migrations.Apply(ctx, db.DB); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database schema ready")
	}

	store := sqlstore.New(db)
	application, err := app.New(app.Stores{
		Accounts: store,
		Sessions: store,
		Scores:   store,
	}, app.Options{
		Auth: auth.Options{
			Secret:     cfg.Auth.JWTSecret,
			TokenTTL:   cfg.Auth.TokenTTL,
			BcryptCost: cfg.Auth.BcryptCost,
		},
	}, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.RequestsPerSecond > 0 {
		limiter = middleware.NewRateLimiter(float64(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, log.Named("ratelimit"))
		if err := application.Attach(limiter); err != nil {
			db.Close()
			return nil, err
		}
	}

	handler := httpapi.NewHandler(application, httpapi.Options{
		Log:            log.Named("http"),
		AllowedOrigins: cfg.CORS.Origins(),
		AuthLimiter:    limiter,
		Health:         store.Ping,
	})

	return &Application{
		cfg: cfg,
		log: log,
		db:  db,
		app: application,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}, nil
}

// Handler exposes the configured HTTP handler.
func (a *Application) Handler() http.Handler {
	return a.server.Handler
}

// Run starts background services and the HTTP server, then blocks until
// the context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.app.Start(ctx); err != nil {
		ln.Close()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Infof("HTTP server listening on %s", ln.Addr())
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown drains the HTTP server, stops background services and closes
// the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := a.app.Stop(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return errors.Join(errs...)
}
