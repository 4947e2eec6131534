// Package users contiene el controller de /api/v1/users.
package users

import svc "github.com/dropDatabas3/usercards/internal/http/services/users"

// Controllers agrupa los controllers del dominio users.
type Controllers struct {
	Users *UsersController
}

// NewControllers crea el agregador de controllers de usuarios.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{
		Users: NewUsersController(s.Users),
	}
}
