// Package apperr defines the error taxonomy shared by all services.
// Handlers map these sentinels onto HTTP status codes with errors.Is;
// raw store errors never cross the service boundary.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound        = errors.New("does not exist")
	ErrConflict        = errors.New("already exists")
	ErrForbidden       = errors.New("not authorized")
	ErrUnauthenticated = errors.New("could not validate credentials")
	ErrValidation      = errors.New("invalid input")
)

func NotFound(obj string) error {
	return fmt.Errorf("%s: %w", obj, ErrNotFound)
}

func Conflict(obj string) error {
	return fmt.Errorf("%s: %w", obj, ErrConflict)
}

func Forbidden(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrForbidden)
}

func Validation(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrValidation)
}

// FromStore translates gorm errors surfaced at the repository boundary
// into the taxonomy. Requires TranslateError on the gorm config so that
// unique and foreign key violations arrive as distinguishable errors.
func FromStore(err error, obj string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(obj)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(obj)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NotFound(obj)
	default:
		return err
	}
}
