package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRoutes(h *HealthHandler) *echo.Echo {
	e := echo.New()
	e.GET("/status", h.CheckHealth)
	return e
}

func healthyProbe(context.Context) error { return nil }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		probes     map[string]probe
		wantStatus int
		wantChecks []string
	}{
		{"all healthy", map[string]probe{"database": healthyProbe, "redis": healthyProbe}, http.StatusOK, []string{"database", "redis"}},
		{"redis down", map[string]probe{
			"database": healthyProbe,
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		}, http.StatusServiceUnavailable, []string{"database", "redis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{Handler: NewHandler(testServer()), probes: tt.probes}

			rec := serve(healthRoutes(h), jsonRequest(http.MethodGet, "/status", ""))

			require.Equal(t, tt.wantStatus, rec.Code)

			var body HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "test", body.Environment)

			got := make([]string, 0, len(body.Checks))
			for name := range body.Checks {
				got = append(got, name)
			}
			assert.ElementsMatch(t, tt.wantChecks, got)

			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "unhealthy", body.Status)
				assert.Equal(t, "connection refused", body.Checks["redis"].Error)
			}
		})
	}
}

func TestHealthHandler_SkipsDisabledChecks(t *testing.T) {
	s := testServer()
	s.Config.Observability = config.DefaultObservabilityConfig()
	s.Config.Observability.HealthChecks.Checks = []string{"database"}
	s.Config.Observability.HealthChecks.Timeout = time.Second

	h := &HealthHandler{Handler: NewHandler(s), probes: map[string]probe{
		"database": healthyProbe,
		"redis":    func(context.Context) error { return errors.New("should not run") },
	}}

	rec := serve(healthRoutes(h), jsonRequest(http.MethodGet, "/status", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotContains(t, body.Checks, "redis")
}
