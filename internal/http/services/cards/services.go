// Package cards contiene el service de tarjetas.
package cards

import (
	"github.com/dropDatabas3/usercards/internal/cache"
	"github.com/dropDatabas3/usercards/internal/domain/repository"
)

// Deps contiene las dependencias para crear los services de tarjetas.
type Deps struct {
	Store repository.Store
	Cache *cache.Aside
}

// Services agrupa los services del dominio cards.
type Services struct {
	Cards CardService
}

// NewServices crea el agregador de services de tarjetas.
func NewServices(d Deps) Services {
	return Services{
		Cards: NewCardService(d),
	}
}
