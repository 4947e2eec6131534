package users

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/validation"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailDuplicate = errors.New("email already in use")
	ErrInvalidInput   = errors.New("invalid input")
	ErrCardsChanged   = errors.New("cards changed concurrently")
)

// invalid envuelve los errores de campo; el controller los recupera con errors.As.
func invalid(errs validation.Errors) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
}

func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrStaleCard):
		return fmt.Errorf("%w: %w", ErrCardsChanged, err)
	case repository.IsNotFound(err):
		return fmt.Errorf("%w: %w", ErrUserNotFound, err)
	case repository.IsConflict(err):
		return fmt.Errorf("%w: %w", ErrEmailDuplicate, err)
	default:
		return err
	}
}
