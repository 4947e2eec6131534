package repository

import (
	"context"
	"time"
)

// User es el perfil de un usuario. Cards se lee siempre ordenado por id
// ascendente, no en el orden de la lista enviada en el último update.
type User struct {
	ID        int64
	Name      string
	Surname   string
	BirthDate time.Time
	Email     string
	Cards     []Card
}

// CreateUserInput contiene los datos para crear un usuario y sus tarjetas iniciales.
type CreateUserInput struct {
	Name      string
	Surname   string
	BirthDate time.Time
	Email     string
	Cards     []Card
}

// ProfileUpdate describe una actualización de perfil ya reconciliada.
//
// Si ReplaceCards es false, Cards y DeleteCardIDs se ignoran y las tarjetas
// persistidas quedan intactas. Si es true, se borran las tarjetas de
// DeleteCardIDs y el set final del usuario pasa a ser exactamente Cards
// (ID == 0 => insert, ID > 0 => update en el lugar).
type ProfileUpdate struct {
	UserID        int64
	Name          string
	Surname       string
	BirthDate     time.Time
	ReplaceCards  bool
	Cards         []Card
	DeleteCardIDs []int64
}

// PageFilter opciones de paginación (page es 0-based).
type PageFilter struct {
	Page int
	Size int
}

// Offset calcula el offset SQL para el filtro.
func (f PageFilter) Offset() int {
	return f.Page * f.Size
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// Create crea el usuario y sus tarjetas. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, input CreateUserInput) (*User, error)

	// GetByID retorna el usuario con sus tarjetas. ErrNotFound si no existe.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail busca por email sin distinguir mayúsculas. ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByIDs retorna los usuarios existentes de ids, ordenados por id.
	// Los ids inexistentes se ignoran.
	GetByIDs(ctx context.Context, ids []int64) ([]User, error)

	// List lista usuarios ordenados por id.
	List(ctx context.Context, filter PageFilter) ([]User, error)

	// Count retorna el total de usuarios.
	Count(ctx context.Context) (int64, error)

	// EmailByID retorna solo el email del usuario. ErrNotFound si no existe.
	EmailByID(ctx context.Context, id int64) (string, error)

	// SaveProfile persiste una actualización reconciliada en una única transacción
	// y retorna el usuario resultante. ErrNotFound si el usuario no existe.
	SaveProfile(ctx context.Context, update ProfileUpdate) (*User, error)

	// Delete elimina el usuario y, en cascada, sus tarjetas. ErrNotFound si no existe.
	Delete(ctx context.Context, id int64) error
}
