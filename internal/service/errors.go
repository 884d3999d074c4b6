package service

import (
	"errors"
	"fmt"

	"eagle-bank-api/internal/core/ports"
	"eagle-bank-api/pkg/apperror"
)

// storeError maps a repository failure to the error surfaced to callers.
// Lock waits that hit the bound become the retryable SYS_002.
func storeError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, ports.ErrLockTimeout) {
		return apperror.ErrLockTimeout(fmt.Errorf("%s: %w", op, err))
	}
	return apperror.InternalError(fmt.Errorf("%s: %w", op, err))
}
