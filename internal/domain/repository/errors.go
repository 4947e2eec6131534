package repository

import "errors"

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica una violación de unicidad (ej: email duplicado).
	ErrConflict = errors.New("conflict")

	// ErrStaleCard indica que una tarjeta a conservar ya no pertenece al usuario
	// (borrada o reasignada entre la lectura y el guardado del perfil).
	ErrStaleCard = errors.New("stale card")

	// ErrInvalidInput indica que los datos de entrada son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict verifica si el error es ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
