package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/labstack/echo/v4"
)

const defaultHealthTimeout = 5 * time.Second

type probe func(ctx context.Context) error

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
	probes map[string]probe
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	probes := map[string]probe{}
	if s.DB != nil && s.DB.Pool != nil {
		probes["database"] = s.DB.Pool.Ping
	}
	if s.Redis != nil {
		probes["redis"] = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}

	return &HealthHandler{Handler: NewHandler(s), probes: probes}
}

type HealthCheck struct {
	Status       string `json:"status"`
	ResponseTime string `json:"responseTime"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]HealthCheck `json:"checks"`
}

func (h *HealthHandler) enabled(name string) bool {
	obs := h.server.Config.Observability
	return obs == nil || obs.HealthCheckEnabled(name)
}

func (h *HealthHandler) timeout() time.Duration {
	if obs := h.server.Config.Observability; obs != nil && obs.HealthChecks.Timeout > 0 {
		return obs.HealthChecks.Timeout
	}
	return defaultHealthTimeout
}

// CheckHealth answers 200 when every enabled probe passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]HealthCheck, len(h.probes)),
	}

	for name, ping := range h.probes {
		if !h.enabled(name) {
			continue
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout())
		checkStart := time.Now()
		err := ping(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = HealthCheck{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}

			logger.Error().Err(err).Str("check", name).Dur("response_time", elapsed).Msg("health check failed")
			h.server.LoggerService.RecordEvent("HealthCheckError", map[string]interface{}{
				"check_type":       name,
				"operation":        "health_check",
				"response_time_ms": elapsed.Milliseconds(),
				"error_message":    err.Error(),
			})
			continue
		}

		response.Checks[name] = HealthCheck{Status: "healthy", ResponseTime: elapsed.String()}
	}

	if response.Status != "healthy" {
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("service unhealthy")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}
