package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	app "github.com/zenscore/zenscore/internal/app"
	"github.com/zenscore/zenscore/internal/app/metrics"
	"github.com/zenscore/zenscore/internal/app/services/auth"
	"github.com/zenscore/zenscore/internal/app/services/sessions"
	"github.com/zenscore/zenscore/internal/errors"
	"github.com/zenscore/zenscore/internal/httputil"
	"github.com/zenscore/zenscore/internal/middleware"
	"github.com/zenscore/zenscore/pkg/logger"
)

// Options configures the HTTP surface.
type Options struct {
	Log            *logger.Logger
	AllowedOrigins []string
	// AuthLimiter throttles signup and login per client; nil disables it.
	AuthLimiter *middleware.RateLimiter
	// Health reports backing store reachability for /healthz.
	Health func(ctx context.Context) error
}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app    *app.Application
	log    *logger.Logger
	health func(ctx context.Context) error
}

// NewHandler returns the full API: routing, authentication, CORS, tracing
// and metrics.
func NewHandler(application *app.Application, opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewDefault("http")
	}
	h := &handler{app: application, log: log, health: opts.Health}

	authMW := middleware.NewAuthMiddleware(application.Auth, log, nil)
	protected := func(fn http.HandlerFunc) http.Handler {
		return authMW.Handler(fn)
	}
	public := func(fn http.HandlerFunc) http.Handler {
		if opts.AuthLimiter == nil {
			return fn
		}
		return opts.AuthLimiter.Handler(fn)
	}

	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.Handle("/api/auth/signup", public(h.signup)).Methods(http.MethodPost)
	r.Handle("/api/auth/login", public(h.login)).Methods(http.MethodPost)

	r.Handle("/api/me", protected(h.profile)).Methods(http.MethodGet)
	r.Handle("/api/score", protected(h.score)).Methods(http.MethodGet)
	r.Handle("/api/stats", protected(h.stats)).Methods(http.MethodGet)
	r.Handle("/api/insights", protected(h.insights)).Methods(http.MethodGet)
	r.Handle("/api/sessions", protected(h.listSessions)).Methods(http.MethodGet)
	r.Handle("/api/sessions", protected(h.createSession)).Methods(http.MethodPost)
	r.Handle("/api/sessions/{id}/sync", protected(h.syncSession)).Methods(http.MethodPatch)

	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorBody{Error: "Not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorBody{Error: "Method not allowed"})
	})

	var out http.Handler = r
	out = middleware.NewCORSMiddleware(opts.AllowedOrigins).Handler(out)
	out = middleware.NewTracingMiddleware(log).Handler(out)
	return out
}

func (h *handler) signup(w http.ResponseWriter, r *http.Request) {
	var payload auth.RegisterInput
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.app.Auth.Register(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload auth.LoginInput
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.app.Auth.Login(r.Context(), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *handler) profile(w http.ResponseWriter, r *http.Request) {
	acct, err := h.app.Auth.Profile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, acct)
}

func (h *handler) score(w http.ResponseWriter, r *http.Request) {
	current, err := h.app.Scores.Trend(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, current)
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.app.Reporting.Summarize(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *handler) insights(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.app.Insights.GetInsight())
}

func (h *handler) listSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := atoiOrZero(query.Get("limit"))
	offset := atoiOrZero(query.Get("offset"))

	page, err := h.app.Sessions.List(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, page)
}

func (h *handler) createSession(w http.ResponseWriter, r *http.Request) {
	var payload sessions.Input
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	created, err := h.app.Sessions.Record(r.Context(), middleware.GetUserID(r.Context()), payload)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, created)
}

func (h *handler) syncSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SyncStatus string `json:"syncStatus"`
	}
	if err := httputil.DecodeJSON(w, r, &payload); err != nil {
		h.writeError(w, r, err)
		return
	}
	id := mux.Vars(r)["id"]
	updated, err := h.app.Sessions.UpdateSyncStatus(r.Context(), middleware.GetUserID(r.Context()), id, payload.SyncStatus)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, updated)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			h.log.WithContext(r.Context()).WithError(err).Warn("health check failed")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.GetServiceError(err) == nil {
		err = errors.Internal("", err)
	}
	httputil.WriteError(w, r, h.log, err)
}

// atoiOrZero parses a query integer; anything unparsable becomes 0 so the
// service applies its default.
func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
