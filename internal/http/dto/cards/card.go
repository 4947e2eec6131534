// Package cards contiene los DTOs de /api/v1/cards.
package cards

import "github.com/dropDatabas3/usercards/internal/http/dto/common"

// CardRequest es una tarjeta dentro de un request de usuario.
// ID nil => tarjeta nueva.
type CardRequest struct {
	ID             *int64      `json:"id,omitempty"`
	Number         string      `json:"number"`
	Holder         string      `json:"holder"`
	ExpirationDate common.Date `json:"expirationDate"`
}

// CreateCardRequest para POST /api/v1/cards
type CreateCardRequest struct {
	UserID         int64       `json:"userId"`
	Number         string      `json:"number"`
	Holder         string      `json:"holder"`
	ExpirationDate common.Date `json:"expirationDate"`
}

// UpdateCardRequest para PUT /api/v1/cards/{id}
type UpdateCardRequest struct {
	Number         string      `json:"number"`
	Holder         string      `json:"holder"`
	ExpirationDate common.Date `json:"expirationDate"`
}

// CardResponse para GET responses
type CardResponse struct {
	ID             int64       `json:"id"`
	UserID         int64       `json:"userId"`
	Number         string      `json:"number"`
	Holder         string      `json:"holder"`
	ExpirationDate common.Date `json:"expirationDate"`
}
