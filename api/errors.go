package api

import (
	"errors"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/storage"
)

// storageError maps store failures for fileName.
func storageError(fileName string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.NotFound("file", fileName).WithCause(err)
	case errors.Is(err, storage.ErrInvalidName):
		return apperrors.InvalidInput("fileName", "must be a plain file name").WithCause(err)
	}
	return apperrors.Internal(err)
}
