// Package controllers agrupa todos los controllers HTTP.
// Este es el "composition root" de controllers.
//
//	┌───────────────────────────────────────────────────────────────────────────┐
//	│  cmd/usercards serve                                                      │
//	│                                                                           │
//	│  1. svcs := services.New(deps)      ← Crear todos los services           │
//	│           ▼                                                               │
//	│  2. ctrls := controllers.New(svcs)  ← Crear controllers con services     │
//	│           ▼                                                               │
//	│  3. router.New(router.Deps{...})    ← Registrar rutas y middlewares      │
//	│           ▼                                                               │
//	│  4. srv.ListenAndServe()            ← Iniciar servidor                   │
//	└───────────────────────────────────────────────────────────────────────────┘
package controllers

import (
	"github.com/dropDatabas3/usercards/internal/http/controllers/cards"
	"github.com/dropDatabas3/usercards/internal/http/controllers/health"
	"github.com/dropDatabas3/usercards/internal/http/controllers/users"
	"github.com/dropDatabas3/usercards/internal/http/services"
)

// Controllers agrupa todos los sub-controllers por dominio.
type Controllers struct {
	Users  *users.Controllers
	Cards  *cards.Controllers
	Health *health.Controllers
}

// New crea el agregador de controllers con todos los services inyectados.
func New(svc *services.Services) *Controllers {
	return &Controllers{
		Users:  users.NewControllers(svc.Users),
		Cards:  cards.NewControllers(svc.Cards),
		Health: health.NewControllers(svc.Health),
	}
}
