package middleware

import (
	"context"
	"time"

	"coaching/attendance/foundation/web"

	"github.com/google/uuid"
)

type traceKey struct{}

// TraceID returns the request trace id stored by Logger.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// Logger assigns every request a trace id (kept from X-Trace-Id when the
// caller sends one) and logs the request when it completes.
func Logger() web.Middleware {
	return func(handler web.Handler) web.Handler {
		return func(c *web.Context) error {
			start := time.Now()

			id := c.Request.Header.Get("X-Trace-Id")
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			c.Ctx = context.WithValue(c.Ctx, traceKey{}, id)
			c.Header("X-Trace-Id", id)

			err := handler(c)

			c.Log().Infow("request",
				"trace_id", id,
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"took", time.Since(start).String(),
			)
			return err
		}
	}
}
