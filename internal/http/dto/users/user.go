// Package users contiene los DTOs de /api/v1/users.
package users

import (
	"github.com/dropDatabas3/usercards/internal/http/dto/cards"
	"github.com/dropDatabas3/usercards/internal/http/dto/common"
)

// CreateUserRequest para POST /api/v1/users
type CreateUserRequest struct {
	Name      string              `json:"name"`
	Surname   string              `json:"surname"`
	BirthDate common.Date         `json:"birthDate"`
	Email     string              `json:"email"`
	Cards     []cards.CardRequest `json:"cards,omitempty"`
}

// UpdateUserRequest para PUT /api/v1/users/{id}
//
// Cards ausente o null deja las tarjetas intactas; [] las borra todas.
// El email no es modificable.
type UpdateUserRequest struct {
	Name      string               `json:"name"`
	Surname   string               `json:"surname"`
	BirthDate common.Date          `json:"birthDate"`
	Cards     *[]cards.CardRequest `json:"cards,omitempty"`
}

// SyncRequest para POST /api/v1/users/sync. Los campos presentes pisan
// los claims given_name / family_name / birthdate del token.
type SyncRequest struct {
	Name      string      `json:"name,omitempty"`
	Surname   string      `json:"surname,omitempty"`
	BirthDate common.Date `json:"birthDate"`
}

// UserResponse para GET responses
type UserResponse struct {
	ID        int64                `json:"id"`
	Name      string               `json:"name"`
	Surname   string               `json:"surname"`
	BirthDate common.Date          `json:"birthDate"`
	Email     string               `json:"email"`
	Cards     []cards.CardResponse `json:"cards"`
}
