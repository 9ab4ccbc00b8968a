package handler

import (
	"errors"

	"meli-reconciler/internal/core/ports"
	"meli-reconciler/pkg/apperror"
)

// asAppError keeps coded errors as they are, reports missing credentials
// as MKT_002 and wraps anything else with fallback.
func asAppError(err error, fallback func(error) *apperror.AppError) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, ports.ErrCredentialsUnavailable) {
		return apperror.ErrMissingCredentials()
	}
	return fallback(err)
}
