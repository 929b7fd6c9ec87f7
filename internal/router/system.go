package router

import (
	"github.com/deppfellow/consultdesk/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the unauthenticated operational endpoints.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.HEAD("/status", h.Health.CheckHealth)
	r.GET("/metrics", h.Metrics.Serve)
}
