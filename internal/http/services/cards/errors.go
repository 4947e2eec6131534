package cards

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/usercards/internal/domain/repository"
	"github.com/dropDatabas3/usercards/internal/validation"
)

var (
	ErrCardNotFound  = errors.New("card not found")
	ErrOwnerNotFound = errors.New("owner not found")
	ErrInvalidInput  = errors.New("invalid input")
)

func invalid(errs validation.Errors) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
}

func notFound(err error) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%w: %w", ErrCardNotFound, err)
	}
	return err
}
