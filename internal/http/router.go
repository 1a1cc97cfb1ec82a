// Package http wires the chi router: middleware chain, the authenticate
// gate and the handler surface.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OpenQueue/API/internal/auth"
	"github.com/OpenQueue/API/internal/cache"
	"github.com/OpenQueue/API/internal/domain/repository"
	"github.com/OpenQueue/API/internal/login"
	"github.com/OpenQueue/API/internal/queue"
	"github.com/OpenQueue/API/internal/rate"
	"github.com/OpenQueue/API/internal/sessions"
)

// Handlers carries the handler dependencies.
type Handlers struct {
	tokens      *login.Tokens
	queues      *queue.Registry
	sess        *sessions.Store
	logins      repository.LoginStore
	cache       cache.Client
	pinger      pinger
	loginLimit  *rate.Limiter
	frontendURL string
}

// Deps is everything the router needs.
type Deps struct {
	Resolver *auth.Resolver
	Tokens   *login.Tokens
	Queues   *queue.Registry
	Sessions *sessions.Store
	Logins   repository.LoginStore
	Cache    cache.Client

	// StorePinger is optional; when set /healthz checks it.
	StorePinger pinger

	// LoginLimiter is optional; when set it throttles password logins
	// per client address.
	LoginLimiter *rate.Limiter

	// FrontendURL is where LoginRedirect sends unauthenticated browsers.
	FrontendURL string

	CORSAllowedOrigins []string
	Metrics            prometheus.Registerer
}

// NewRouter builds the full HTTP handler.
func NewRouter(d Deps) http.Handler {
	h := &Handlers{
		tokens:      d.Tokens,
		queues:      d.Queues,
		sess:        d.Sessions,
		logins:      d.Logins,
		cache:       d.Cache,
		pinger:      d.StorePinger,
		loginLimit:  d.LoginLimiter,
		frontendURL: ensureTrailingSlash(d.FrontendURL),
	}

	metricsHandler := RegisterMetrics(d.Metrics)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler { return WithCORS(next, d.CORSAllowedOrigins) })
	r.Use(WithRequestID)
	r.Use(WithMetrics)
	r.Use(WithRequestLogging)

	r.Get("/healthz", h.Healthz)
	r.Handle("/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		// session endpoints sit outside the authenticate gate: login
		// creates the session the gate would consult
		r.Post("/auth/site/login", h.SiteLogin)
		r.Post("/auth/site/logout", h.SiteLogout)
		r.Get("/auth/site/session", h.SiteSession)

		// browser redirect flow reads the session itself
		r.Get("/auth/login", h.LoginRedirect)

		r.Group(func(r chi.Router) {
			r.Use(Authenticate(d.Resolver, d.Sessions))

			r.Post("/auth/generate", h.TokenGenerate)
			r.Get("/auth/user", h.UserToken)
			r.Get("/auth/site/scopes", h.MyScopes)

			r.Post("/caching", h.CachingWebhook)

			r.Route("/v1/league", func(r chi.Router) {
				r.Get("/", h.LeagueGet)
				r.Get("/user", h.LeagueUserGet)
				r.Get("/user/ban", h.LeagueUserBanGet)
				r.Get("/match", h.MatchGet)

				r.Get("/queue", h.QueueGet)
				r.Post("/queue", h.QueueCreate)
				r.Put("/queue", h.QueueJoin)
				r.Patch("/queue", h.QueueLeave)
				r.Delete("/queue", h.QueueEnd)
			})
		})
	})

	return r
}

func ensureTrailingSlash(s string) string {
	if s == "" || s[len(s)-1] == '/' {
		return s
	}
	return s + "/"
}
