package repository

import (
	"context"
	"time"
)

// Card es una tarjeta asociada a un usuario por UserID.
type Card struct {
	ID             int64
	UserID         int64
	Number         string
	Holder         string
	ExpirationDate time.Time
}

// CardInput es una tarjeta entrante en una actualización de perfil.
// ID nil significa "tarjeta nueva".
type CardInput struct {
	ID             *int64
	Number         string
	Holder         string
	ExpirationDate time.Time
}

// CardRepository define operaciones sobre tarjetas.
type CardRepository interface {
	// Create inserta la tarjeta. ErrNotFound si card.UserID no existe.
	Create(ctx context.Context, card Card) (*Card, error)

	// GetByID retorna la tarjeta. ErrNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*Card, error)

	// ListByUser retorna las tarjetas del usuario ordenadas por id.
	ListByUser(ctx context.Context, userID int64) ([]Card, error)

	// List lista todas las tarjetas ordenadas por id.
	List(ctx context.Context, filter PageFilter) ([]Card, error)

	// Count retorna el total de tarjetas.
	Count(ctx context.Context) (int64, error)

	// Update reescribe número, titular y vencimiento. El dueño no cambia.
	Update(ctx context.Context, card Card) (*Card, error)

	// Delete elimina la tarjeta. ErrNotFound si no existe.
	Delete(ctx context.Context, id int64) error

	// OwnerEmail resuelve el email del dueño de la tarjeta en una sola consulta.
	// ErrNotFound si la tarjeta no existe.
	OwnerEmail(ctx context.Context, cardID int64) (string, error)
}

// Store agrupa los repositorios y el ciclo de vida de la conexión.
type Store interface {
	Users() UserRepository
	Cards() CardRepository
	Ping(ctx context.Context) error
	Close() error
}
