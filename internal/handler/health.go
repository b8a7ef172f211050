package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"http-relay-go/internal/config"
)

// Version is a string type for dependency injection of the build version.
type Version string

// rootBanner is the constant liveness acknowledgement served at "/".
const rootBanner = "Server running perfectly..."

// HealthHandler serves health and status endpoints.
type HealthHandler struct {
	cfg     *config.Config
	version Version
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, v Version) *HealthHandler {
	return &HealthHandler{cfg: cfg, version: v}
}

// Root returns the plain-text liveness banner.
func (h *HealthHandler) Root(c echo.Context) error {
	return c.String(http.StatusOK, rootBanner)
}

// Healthz returns a simple OK response for liveness probes.
func (h *HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Status returns relay status information.
func (h *HealthHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    string(h.version),
		"timeout_ms": h.cfg.Relay.TimeoutMs,
	})
}
