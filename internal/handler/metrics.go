package handler

import (
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler exposes the server's Prometheus registry.
type MetricsHandler struct {
	Handler
	serve echo.HandlerFunc
}

func NewMetricsHandler(s *server.Server) *MetricsHandler {
	return &MetricsHandler{
		Handler: NewHandler(s),
		serve: echo.WrapHandler(promhttp.HandlerFor(s.Metrics, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		})),
	}
}

func (h *MetricsHandler) Serve(c echo.Context) error {
	return h.serve(c)
}
