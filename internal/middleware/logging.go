// Package middleware provides Echo middleware for logging, metrics and
// response hardening.
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// OutcomeKey is the echo context key under which handlers store the relay
// outcome ("success" or a failure kind) for the request log.
const OutcomeKey = "relay.outcome"

// RequestLogger returns an Echo middleware that logs each request with slog.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			attrs := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", res.Header().Get(echo.HeaderXRequestID),
				"remote_ip", c.RealIP(),
				"bytes_out", res.Size,
			}
			if outcome, ok := c.Get(OutcomeKey).(string); ok {
				attrs = append(attrs, "outcome", outcome)
			}
			if req.Context().Err() != nil && !res.Committed {
				attrs = append(attrs, "caller_gone", true)
			}

			logger.Info("request", attrs...)

			return err
		}
	}
}
