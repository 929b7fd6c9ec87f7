package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/handler"
	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const cookieName = "consultdesk_session"

type tokenValidator map[string]*model.SessionUser

func (v tokenValidator) Validate(_ context.Context, token string) (*model.SessionUser, error) {
	if su, ok := v[token]; ok {
		return su, nil
	}
	return nil, errs.ErrSessionInvalid
}

// testRouter wires every handler without services; requests used here are
// rejected before any service call.
func testRouter() *echo.Echo {
	logger := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}},
			Auth:    config.AuthConfig{CookieName: cookieName, SessionTTL: time.Hour},
			Storage: config.StorageConfig{Driver: config.StorageDriverFS, MaxUploadBytes: 16},
		},
		Logger:  &logger,
		Metrics: prometheus.NewRegistry(),
	}

	h := &handler.Handlers{
		Health:      handler.NewHealthHandler(s),
		Metrics:     handler.NewMetricsHandler(s),
		Auth:        handler.NewAuthHandler(s, nil, nil),
		Users:       handler.NewUserHandler(s, nil),
		Admin:       handler.NewAdminHandler(s, nil, nil),
		Consultants: handler.NewConsultantHandler(s, nil),
		Clients:     handler.NewClientHandler(s, nil),
		Locations:   handler.NewLocationHandler(s, nil),
		Consults:    handler.NewConsultHandler(s, nil),
		Attachments: handler.NewAttachmentHandler(s, nil),
		Options:     handler.NewOptionHandler(s, nil),
	}

	sessions := tokenValidator{
		"staff": {UserID: uuid.New(), Role: model.RoleStaff},
		"admin": {UserID: uuid.New(), Role: model.RoleAdmin},
	}

	return NewRouter(s, h, middleware.NewMiddlewares(s, sessions))
}

func do(r *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Access(t *testing.T) {
	r := testRouter()

	tests := []struct {
		name       string
		method     string
		target     string
		token      string
		wantStatus int
	}{
		{"status is public", http.MethodGet, "/status", "", http.StatusOK},
		{"metrics is public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"consults need a session", http.MethodGet, "/api/v1/consults", "", http.StatusUnauthorized},
		{"expired session", http.MethodGet, "/api/v1/consults", "stale", http.StatusUnauthorized},
		{"me needs a session", http.MethodGet, "/api/v1/auth/me", "", http.StatusUnauthorized},
		{"admin routes refuse staff", http.MethodGet, "/api/v1/admin/users", "staff", http.StatusForbidden},
		{"admin flush refuses staff", http.MethodPost, "/api/v1/admin/cache/flush", "staff", http.StatusForbidden},
		{"bad id reaches validation", http.MethodGet, "/api/v1/consults/nope", "staff", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/v1/nothing", "staff", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(r, tt.method, tt.target, tt.token)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_SetsRequestID(t *testing.T) {
	rec := do(testRouter(), http.MethodGet, "/status", "")
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_UploadBodyLimit(t *testing.T) {
	r := testRouter()

	body := strings.Repeat("x", multipartOverhead+64)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/consults/"+uuid.NewString()+"/attachments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "multipart/form-data; boundary=xyz")
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "staff"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
