// Package services agrupa todos los services HTTP.
// Este es el "composition root" de services: el único lugar donde se instancian.
//
// Uso en cmd/usercards:
//
//	svcs := services.New(services.Deps{
//	    Store: store,
//	    Cache: cache.NewAside(client, cfg.Cache.TTL),
//	    HealthDeps: health.Deps{DBCheck: store.Ping, CacheCheck: client.Ping},
//	})
//	ctrls := controllers.New(svcs)
package services

import (
	"time"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/http/services/cards"
	"github.com/dropDatabas3/usercards/internal/http/services/health"
	"github.com/dropDatabas3/usercards/internal/http/services/users"
)

// Deps contiene las dependencias base para crear los services.
type Deps struct {
	// ─── Infraestructura ───
	Store repository.Store
	Cache *cache.Aside // nil => sin cache

	// ─── Reloj (tests) ───
	Now func() time.Time

	// ─── Health Check ───
	HealthDeps health.Deps
}

// Services agrupa todos los sub-services por dominio.
type Services struct {
	Users  users.Services
	Cards  cards.Services
	Health health.Services
}

// New crea el agregador de services con todas las dependencias inyectadas.
func New(d Deps) *Services {
	return &Services{
		Users: users.NewServices(users.Deps{
			Store: d.Store,
			Cache: d.Cache,
			Now:   d.Now,
		}),
		Cards: cards.NewServices(cards.Deps{
			Store: d.Store,
			Cache: d.Cache,
		}),
		Health: health.NewServices(d.HealthDeps),
	}
}
