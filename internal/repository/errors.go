package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"visa-advisory-portal/internal/apperror"
	"visa-advisory-portal/internal/util"
)

const uniqueViolation = "23505"

// mapError : translates driver errors into apperror values, everything else is logged and wrapped
func mapError(message string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(apperror.ErrNotFound, err, "")
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperror.Wrap(apperror.ErrConflict, err, "already exists")
	}
	return util.LogError(message, err)
}
