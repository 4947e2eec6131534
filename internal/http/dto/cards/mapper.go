package cards

import (
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/http/dto/common"
)

// FromDomain convierte una tarjeta del dominio a su respuesta.
func FromDomain(c repository.Card) CardResponse {
	return CardResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		Number:         c.Number,
		Holder:         c.Holder,
		ExpirationDate: common.NewDate(c.ExpirationDate),
	}
}

// FromDomainList convierte una lista; nunca devuelve nil.
func FromDomainList(list []repository.Card) []CardResponse {
	out := make([]CardResponse, 0, len(list))
	for _, c := range list {
		out = append(out, FromDomain(c))
	}
	return out
}

// ToInputs convierte las tarjetas de un request de usuario.
func ToInputs(reqs []CardRequest) []repository.CardInput {
	out := make([]repository.CardInput, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, repository.CardInput{
			ID:             r.ID,
			Number:         r.Number,
			Holder:         r.Holder,
			ExpirationDate: r.ExpirationDate.Time,
		})
	}
	return out
}
