package database

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/voicegate/errors"
)

// IsNotFound reports a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a GORM error to an AppError.
func FromDatabase(err error, resource string) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case IsNotFound(err):
		return apperrors.NotFound(resource, "").WithCause(err)
	}
	return apperrors.DatabaseError(err)
}
