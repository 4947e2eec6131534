package users

import (
	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/http/dto/cards"
	"github.com/dropDatabas3/usercards/internal/http/dto/common"
)

// FromDomain convierte un usuario del dominio a su respuesta.
func FromDomain(u repository.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Surname:   u.Surname,
		BirthDate: common.NewDate(u.BirthDate),
		Email:     u.Email,
		Cards:     cards.FromDomainList(u.Cards),
	}
}

// FromDomainList convierte una lista; nunca devuelve nil.
func FromDomainList(list []repository.User) []UserResponse {
	out := make([]UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, FromDomain(u))
	}
	return out
}
