package middleware

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/logger"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

const (
	UserIDKey      = "user_id"
	UserRoleKey    = "user_role"
	SessionUserKey = "session_user"
	LoggerKey      = "logger"
)

type ctxKey string

const loggerCtxKey ctxKey = LoggerKey

// ContextEnhancer builds the request-scoped logger.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext attaches a logger carrying request_id, method, path, ip and
// the New Relic trace context to both the Echo and the Go request context.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			setLogger(c, &contextLogger)

			return next(c)
		}
	}
}

func setLogger(c echo.Context, l *zerolog.Logger) {
	c.Set(LoggerKey, l)
	ctx := context.WithValue(c.Request().Context(), loggerCtxKey, l)
	c.SetRequest(c.Request().WithContext(ctx))
}

// SetSessionUser records the authenticated user and adds it to the request
// logger.
func SetSessionUser(c echo.Context, su *model.SessionUser) {
	c.Set(SessionUserKey, su)
	c.Set(UserIDKey, su.UserID.String())
	c.Set(UserRoleKey, string(su.Role))

	l := GetLogger(c).With().
		Str("user_id", su.UserID.String()).
		Str("user_role", string(su.Role)).
		Logger()
	setLogger(c, &l)
}

func GetSessionUser(c echo.Context) *model.SessionUser {
	if su, ok := c.Get(SessionUserKey).(*model.SessionUser); ok {
		return su
	}
	return nil
}

func GetUserID(c echo.Context) string {
	if userID, ok := c.Get(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetUserRole(c echo.Context) model.Role {
	if role, ok := c.Get(UserRoleKey).(string); ok {
		return model.Role(role)
	}
	return ""
}

// GetUserUUID returns the authenticated user's id, or uuid.Nil.
func GetUserUUID(c echo.Context) uuid.UUID {
	if su := GetSessionUser(c); su != nil {
		return su.UserID
	}
	return uuid.Nil
}

// GetLogger returns the request-scoped logger, or a no-op logger when
// EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if l, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return l
	}
	l := zerolog.Nop()
	return &l
}
