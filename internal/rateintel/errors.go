// internal/rateintel/errors.go
package rateintel

import (
	"context"
	"errors"

	apperrors "talent-matching-workers/internal/common/errors"
)

// JobError maps supplier errors onto worker error codes.
func JobError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsStandardError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrInvalidQuery):
		return apperrors.NewInvalidRateQueryError(err.Error())
	case errors.Is(err, ErrRateDataUnavailable):
		return apperrors.NewRateDataUnavailableError(err)
	case ctx.Err() != nil, errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("rate intelligence", err)
	}
	return apperrors.NewInternalError(err)
}
