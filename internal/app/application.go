package app

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/zenscore/zenscore/internal/app/services/auth"
	"github.com/zenscore/zenscore/internal/app/services/insights"
	"github.com/zenscore/zenscore/internal/app/services/reporting"
	"github.com/zenscore/zenscore/internal/app/services/score"
	"github.com/zenscore/zenscore/internal/app/services/sessions"
	"github.com/zenscore/zenscore/internal/app/storage"
	"github.com/zenscore/zenscore/internal/app/storage/memory"
	"github.com/zenscore/zenscore/internal/app/system"
	"github.com/zenscore/zenscore/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Accounts storage.AccountStore
	Sessions storage.SessionStore
	Scores   storage.ScoreStore
}

// Options carries the non-storage dependencies of the services.
type Options struct {
	Auth auth.Options
	// InsightSource seeds tip selection; nil seeds from the clock.
	InsightSource rand.Source
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Auth      *auth.Service
	Sessions  *sessions.Service
	Scores    *score.Service
	Reporting *reporting.Service
	Insights  *insights.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, opts Options, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Accounts == nil {
		stores.Accounts = mem
	}
	if stores.Sessions == nil {
		stores.Sessions = mem
	}
	if stores.Scores == nil {
		stores.Scores = mem
	}

	authService, err := auth.New(stores.Accounts, opts.Auth, log.Named("auth"))
	if err != nil {
		return nil, fmt.Errorf("configure auth service: %w", err)
	}
	scoreService := score.New(stores.Scores, stores.Sessions, log.Named("score"))
	sessionService := sessions.New(stores.Accounts, stores.Sessions, scoreService, log.Named("sessions"))

	return &Application{
		manager:   system.NewManager(),
		log:       log,
		Auth:      authService,
		Sessions:  sessionService,
		Scores:    scoreService,
		Reporting: reporting.New(stores.Sessions, log.Named("reporting")),
		Insights:  insights.New(opts.InsightSource),
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
