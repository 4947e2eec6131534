// Package router arma el chi.Router del API: middlewares globales, rutas
// públicas (health, métricas) y rutas /api/v1 protegidas por JWT y guards.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	httpmetrics "github.com/dropDatabas3/usercards/internal/http"
	"github.com/dropDatabas3/usercards/internal/http/controllers"
	httperrors "github.com/dropDatabas3/usercards/internal/http/errors"
	mw "github.com/dropDatabas3/usercards/internal/http/middlewares"
	"github.com/dropDatabas3/usercards/internal/rate"
)

// Deps contiene las dependencias del router.
type Deps struct {
	Controllers *controllers.Controllers

	// Auth
	Verifier      mw.TokenVerifier
	RolesClientID string
	Authorizer    *mw.Authorizer

	// Opcionales
	RateLimiter    rate.Limiter // nil => sin rate limit
	CORSOrigins    []string     // vacío => sin CORS
	MetricsHandler http.Handler // nil => sin /metrics
}

// publicPaths no pasan por rate limit ni auth.
var publicPaths = []string{"/healthz", "/readyz", "/metrics"}

// New construye el router.
//
// Orden: recover → request id → metrics → logging → CORS → rate limit → auth → guard.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		httpmetrics.WithMetrics,
		mw.WithLogging(),
	)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(corsOptions(d.CORSOrigins)))
	}
	r.Use(mw.WithRateLimit(mw.RateLimitConfig{
		Limiter:   d.RateLimiter,
		Whitelist: publicPaths,
	}))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// ─── Públicas ───
	health := d.Controllers.Health.Health
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	// ─── API ───
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(mw.RequireAuth(d.Verifier, d.RolesClientID))

		registerUserRoutes(api, d)
		registerCardRoutes(api, d)
	})

	return r
}

func registerUserRoutes(api chi.Router, d Deps) {
	users := d.Controllers.Users.Users
	cards := d.Controllers.Cards.Cards
	az := d.Authorizer

	api.Route("/users", func(r chi.Router) {
		r.With(az.EmailFromBody("email")).Post("/", users.Create)
		r.With(mw.RequireIdentity()).Post("/sync", users.Sync)
		r.With(mw.RequireIdentity()).Get("/me", users.Me)

		r.With(az.Admin()).Get("/", users.List)
		r.With(az.Admin()).Get("/batch", users.Batch)
		r.With(az.Email("email")).Get("/email/{email}", users.GetByEmail)

		r.Route("/{id}", func(one chi.Router) {
			one.Use(az.User("id"))
			one.Get("/", users.Get)
			one.Put("/", users.Update)
			one.Delete("/", users.Delete)
			one.Get("/cards", cards.ListByUser)
		})
	})
}

func registerCardRoutes(api chi.Router, d Deps) {
	cards := d.Controllers.Cards.Cards
	az := d.Authorizer

	api.Route("/cards", func(r chi.Router) {
		r.With(az.UserFromBody("userId")).Post("/", cards.Create)
		r.With(az.Admin()).Get("/", cards.List)

		r.Route("/{id}", func(one chi.Router) {
			one.Use(az.Card("id"))
			one.Get("/", cards.Get)
			one.Put("/", cards.Update)
			one.Delete("/", cards.Delete)
		})
	})
}

func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{
			"Location",
			"Retry-After",
			"X-Request-ID",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
}
