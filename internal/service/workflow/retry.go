package workflow

import (
	"context"
	"time"

	"coaching/attendance/internal/entity"
	"coaching/attendance/internal/pkg/metrics"

	"github.com/cenkalti/backoff/v5"
	"github.com/pkg/errors"
)

// retry runs op and, if it fails with a transient storage error, runs it once
// more. A second transient failure becomes ErrStorageUnavailable; any other
// error is returned as is.
func retry[T any](ctx context.Context, w *Workflow, operation string, op func() (T, error)) (T, error) {
	attempt := 0

	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, err := op()
		if err != nil && !errors.Is(err, entity.ErrTransient) {
			return res, backoff.Permanent(err)
		}
		return res, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(w.cfg.RetryDelay)),
		backoff.WithMaxTries(2),
		backoff.WithNotify(func(err error, _ time.Duration) {
			w.log.Warnw("retrying storage call", "operation", operation, "error", err)
			w.metrics.Operation(operation, metrics.OutcomeRetried)
		}),
	)
	if err != nil && errors.Is(err, entity.ErrTransient) {
		return res, errors.Wrapf(entity.ErrStorageUnavailable, "%s failed after %d attempts: %v", operation, attempt, err)
	}
	return res, err
}
