package service

import (
	"errors"

	"analytics/internal/domain"

	"gorm.io/gorm"
)

// catalogError wraps a catalog driver failure so its text never reaches the client.
func catalogError(op string, err error) error {
	return &domain.QueryExecutionError{Op: op, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// isDuplicate relies on the catalog being opened with TranslateError.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
