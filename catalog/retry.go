package catalog

import (
	"context"
	"errors"

	"github.com/xixipi-lining/iceberg-rest-client/logger"
	"github.com/xixipi-lining/iceberg-rest-client/resterr"
)

type refresher interface {
	RefreshToken(ctx context.Context) error
}

// withReauth runs op at most twice. The second attempt only happens when the
// first failed with an expired authorization and the token was refreshed.
// A cancelled context never gets a second attempt.
func withReauth[T any](ctx context.Context, r refresher, log logger.Logger, op func(context.Context) (T, error)) (T, error) {
	res, err := op(ctx)
	if err == nil || !errors.Is(err, resterr.ErrAuthorizationExpired) || ctx.Err() != nil {
		return res, err
	}

	log.Warn("authorization expired, refreshing token")
	if err := r.RefreshToken(ctx); err != nil {
		var zero T
		return zero, err
	}
	return op(ctx)
}

// reauth is withReauth for operations without a result.
func reauth(ctx context.Context, r refresher, log logger.Logger, op func(context.Context) error) error {
	_, err := withReauth(ctx, r, log, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
