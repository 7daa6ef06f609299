package repositories

import (
	stderrors "errors"

	"github.com/mroshb/kudos/pkg/errors"
	"gorm.io/gorm"
)

// lookupError maps a failed point read to NOT_FOUND or INTERNAL_ERROR.
func lookupError(err error, entity string) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.New(errors.ErrCodeNotFound, entity+" not found")
	}
	return errors.Wrap(err, errors.ErrCodeInternalError, "failed to get "+entity)
}

// passThrough keeps AppErrors raised inside a transaction and wraps anything
// else as an internal failure.
func passThrough(err error, message string) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	return errors.Wrap(err, errors.ErrCodeInternalError, message)
}
