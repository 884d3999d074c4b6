package postgres

import (
	"errors"
	"fmt"

	"eagle-bank-api/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the adapter translates into port sentinels.
const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
)

// wrapErr annotates err with op and, for known SQLSTATEs, the matching
// ports sentinel so callers can use errors.Is without importing pgconn.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, ports.ErrDuplicateKey, err)
		case codeLockNotAvailable:
			return fmt.Errorf("%s: %w: %w", op, ports.ErrLockTimeout, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
