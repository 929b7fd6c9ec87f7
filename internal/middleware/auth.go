package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/labstack/echo/v4"
)

// SessionValidator resolves a raw session token. It returns
// errs.ErrSessionInvalid for unknown or expired tokens.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.SessionUser, error)
}

type AuthMiddleware struct {
	server    *server.Server
	validator SessionValidator
}

func NewAuthMiddleware(s *server.Server, validator SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{
		server:    s,
		validator: validator,
	}
}

// RequireAuth reads the session cookie, validates it and stores the session
// user in the Echo context. Missing cookies get a plain 401; unknown or
// expired sessions get a 401 with a login action.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		cookie, err := c.Cookie(auth.server.Config.Auth.CookieName)
		if err != nil || cookie.Value == "" {
			return errs.NewUnauthorizedError("Authentication required", true)
		}

		su, err := auth.validator.Validate(c.Request().Context(), cookie.Value)
		if err != nil {
			if errors.Is(err, errs.ErrSessionInvalid) {
				GetLogger(c).Info().
					Str("function", "RequireAuth").
					Dur("duration", time.Since(start)).
					Msg("rejected invalid session")
				return errs.NewSessionExpiredError()
			}
			return err
		}

		SetSessionUser(c, su)

		GetLogger(c).Debug().
			Str("function", "RequireAuth").
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}

// RequireRole must run after RequireAuth.
func (auth *AuthMiddleware) RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			su := GetSessionUser(c)
			if su == nil {
				return errs.NewUnauthorizedError("Authentication required", true)
			}

			for _, role := range roles {
				if su.Role == role {
					return next(c)
				}
			}

			return errs.NewForbiddenError("You do not have permission to perform this action", true)
		}
	}
}
