// Package users contiene el service de usuarios: alta, sincronización desde el
// token, lecturas con cache-aside, actualización de perfil con reconciliación
// de tarjetas y borrado.
package users

import (
	"time"

	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

// Deps contiene las dependencias para crear los services de usuarios.
type Deps struct {
	Store repository.Store
	Cache *cache.Aside     // nil => sin cache
	Now   func() time.Time // nil => time.Now
}

// Services agrupa los services del dominio users.
type Services struct {
	Users UserService
}

// NewServices crea el agregador de services de usuarios.
func NewServices(d Deps) Services {
	return Services{
		Users: NewUserService(d),
	}
}
