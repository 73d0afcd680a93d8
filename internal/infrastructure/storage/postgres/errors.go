package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"medreg/internal/core/apperror"
)

// PostgreSQL error codes that indicate a transient, retry-whole-operation
// condition rather than a bug.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014" // statement_timeout fired
)

// IsTransientPgError reports whether err is a lock timeout, deadlock,
// serialization failure or lost connection.
func IsTransientPgError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return true
		}
		// Class 08 - connection exceptions
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08" {
			return true
		}
	}
	return pgconn.SafeToRetry(err) || errors.Is(err, context.DeadlineExceeded)
}

// WrapStoreError maps a low-level store error to the domain taxonomy.
// Transient conditions become TRANSIENT_FAILURE so the caller knows the whole
// operation may be retried from scratch; anything else is wrapped with op for
// context and stays an internal error.
func WrapStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsTransientPgError(err) {
		return apperror.NewTransient(fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
