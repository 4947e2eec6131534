// Package server arma el handler HTTP con todas las dependencias y corre el
// http.Server con shutdown ordenado.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/config"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	httpmetrics "github.com/dropDatabas3/usercards/internal/http"
	"github.com/dropDatabas3/usercards/internal/http/controllers"
	mw "github.com/dropDatabas3/usercards/internal/http/middlewares"
	"github.com/dropDatabas3/usercards/internal/http/router"
	"github.com/dropDatabas3/usercards/internal/http/services"
	"github.com/dropDatabas3/usercards/internal/http/services/health"
	jwtx "github.com/dropDatabas3/usercards/internal/jwt"
	"github.com/dropDatabas3/usercards/internal/observability/logger"
	"github.com/dropDatabas3/usercards/internal/rate"
	"github.com/dropDatabas3/usercards/internal/security/access"
	"github.com/dropDatabas3/usercards/internal/store/memory"
	"github.com/dropDatabas3/usercards/internal/store/pg"
)

// App es el resultado del wiring: handler listo y cleanup de recursos.
type App struct {
	Handler http.Handler
	Store   repository.Store
	Cache   cache.Client

	closers []func() error
}

// Close libera store y cache en orden inverso de creación. Nil-safe.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build instancia store, cache, verifier, access engine, services, controllers y router.
// Si algo falla se cierran los recursos ya abiertos.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.L().With(logger.Component("wiring"))
	app := &App{}
	built := false
	defer func() {
		if !built {
			if cerr := app.Close(); cerr != nil {
				log.Warn("cleanup after failed wiring", logger.Err(cerr))
			}
		}
	}()

	// 1. Store
	var pool func() *pgxpool.Pool
	switch strings.ToLower(cfg.Storage.Driver) {
	case "memory":
		app.Store = memory.New()
		log.Warn("using in-memory store, data is not persisted")
	default:
		pgStore, err := pg.New(ctx, pg.Config{
			DSN:             cfg.Storage.DSN,
			MaxConns:        cfg.Storage.MaxConns,
			MinConns:        cfg.Storage.MinConns,
			ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		app.Store = pgStore
		pool = pgStore.Pool
	}
	app.closers = append(app.closers, app.Store.Close)
	if pgStore, isPG := app.Store.(*pg.Store); isPG && cfg.Flags.Migrate {
		if err := pgStore.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	// 2. Cache (redis caído al arrancar => memory, el servicio sigue funcionando)
	client, err := cache.New(ctx, cache.Config{
		Kind:     cfg.Cache.Kind,
		Addr:     cfg.Cache.Redis.Addr,
		Password: cfg.Cache.Redis.Password,
		DB:       cfg.Cache.Redis.DB,
		Prefix:   cfg.Cache.Redis.Prefix,
		TTL:      cfg.Cache.TTL,
	})
	if err != nil {
		log.Warn("cache backend unavailable, falling back to memory", logger.Err(err))
		client = cache.NewMemory(cfg.Cache.Redis.Prefix, cfg.Cache.TTL)
	}
	app.Cache = client
	app.closers = append(app.closers, app.Cache.Close)
	aside := cache.NewAside(app.Cache, cfg.Cache.TTL, cache.WithObserver(httpmetrics.RecordCacheResult))

	// 3. Rate limit
	var limiter rate.Limiter
	if cfg.Rate.Enabled {
		if rc, ok := app.Cache.(*cache.Redis); ok {
			limiter = rate.NewRedisLimiter(rc.Raw(), cfg.Cache.Redis.Prefix+":rl:", cfg.Rate.MaxRequests, cfg.Rate.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window)
		}
	}

	// 4. Auth
	verifier, err := jwtx.NewVerifier(jwtx.Config{
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
		JWKSURL:    cfg.JWT.JWKSURL,
		HMACSecret: cfg.JWT.HMACSecret,
		Leeway:     cfg.JWT.Leeway,
		JWKSTTL:    cfg.JWT.JWKSTTL,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("jwt verifier: %w", err)
	}
	engine := access.NewEngine(access.StoreLookup(app.Store), cfg.JWT.AdminRole)

	// 5. Métricas
	metricsHandler, err := httpmetrics.RegisterMetrics(httpmetrics.MetricsConfig{Pool: pool})
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	// 6. Services → Controllers → Router
	svcs := services.New(services.Deps{
		Store: app.Store,
		Cache: aside,
		HealthDeps: health.Deps{
			DBCheck:    app.Store.Ping,
			CacheCheck: app.Cache.Ping,
		},
	})
	app.Handler = router.New(router.Deps{
		Controllers:    controllers.New(svcs),
		Verifier:       verifier,
		RolesClientID:  cfg.JWT.RolesClientID,
		Authorizer:     mw.NewAuthorizer(engine, httpmetrics.RecordAccessDecision),
		RateLimiter:    limiter,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		MetricsHandler: metricsHandler,
	})

	log.Info("handler wired",
		logger.String("storage", cfg.Storage.Driver),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
	)
	built = true
	return app, nil
}
