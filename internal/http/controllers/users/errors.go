package users

import (
	"errors"

	httperrors "github.com/dropDatabas3/usercards/internal/http/errors"
	svc "github.com/dropDatabas3/usercards/internal/http/services/users"
	"github.com/dropDatabas3/usercards/internal/validation"
)

// mapError convierte errores del service a AppError.
func mapError(err error) *httperrors.AppError {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		return httperrors.ErrValidation.WithFields(verrs)
	case errors.Is(err, svc.ErrInvalidInput):
		return httperrors.ErrValidation.WithDetail(err.Error())
	case errors.Is(err, svc.ErrUserNotFound):
		return httperrors.ErrUserNotFound
	case errors.Is(err, svc.ErrEmailDuplicate):
		return httperrors.ErrEmailAlreadyInUse
	case errors.Is(err, svc.ErrCardsChanged):
		return httperrors.ErrProfileChanged
	default:
		return httperrors.ErrInternalServerError.WithCause(err)
	}
}
