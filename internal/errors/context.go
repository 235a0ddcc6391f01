package errors

import (
	"context"
	"errors"
)

// MapContextError maps context deadline and cancellation errors to AppError
// instances. Other errors are returned unchanged.
func MapContextError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "La requête a expiré. Veuillez réessayer.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "La requête a été annulée.",
			Cause:   err,
		}
	}
	return err
}
