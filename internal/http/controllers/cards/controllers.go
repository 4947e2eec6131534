// Package cards contiene el controller de /api/v1/cards.
package cards

import svc "github.com/dropDatabas3/usercards/internal/http/services/cards"

// Controllers agrupa los controllers del dominio cards.
type Controllers struct {
	Cards *CardsController
}

// NewControllers crea el agregador de controllers de tarjetas.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Cards: NewCardsController(s.Cards),
	}
}
