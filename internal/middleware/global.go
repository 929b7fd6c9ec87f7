package middleware

import (
	"net/http"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/sqlerr"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{server: s}
}

// CORS allows credentials so browsers send the session cookie from the
// configured origins.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     global.server.Config.Server.CORSAllowedOrigins,
		AllowCredentials: true,
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// RequestLogger writes one "API" line per request at a level chosen by the
// final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// The error handler runs after this hook, so a failed request
			// still reports 200 in v.Status.
			status := v.Status
			if v.Error != nil {
				status = toHTTPError(v.Error).Status
			}

			levelFor(GetLogger(c), status, v.Error).
				Dur("latency", v.Latency).
				Int("status", status).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")
			return nil
		},
	})
}

func levelFor(l *zerolog.Logger, status int, err error) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error().Stack().Err(err)
	case status >= http.StatusBadRequest:
		return l.Warn().Err(err)
	}
	return l.Info()
}

// toHTTPError maps anything a handler can return onto the error body:
// service sentinels, echo's own errors and database failures.
func toHTTPError(err error) *errs.HTTPError {
	if httpErr, ok := errs.AsHTTPError(err); ok {
		return httpErr
	}

	switch {
	case errors.Is(err, errs.ErrInvalidCredentials):
		return errs.NewUnauthorizedError(errs.ErrInvalidCredentials.Error(), true)
	case errors.Is(err, errs.ErrSessionInvalid):
		return errs.NewSessionExpiredError()
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		return fromEcho(echoErr)
	}

	if httpErr, ok := errs.AsHTTPError(sqlerr.HandleError(err)); ok {
		return httpErr
	}
	return errs.NewInternalServerError()
}

func fromEcho(e *echo.HTTPError) *errs.HTTPError {
	switch e.Code {
	case http.StatusNotFound:
		return errs.NewNotFoundError("Route not found", false, nil)
	case http.StatusRequestEntityTooLarge:
		return errs.NewPayloadTooLargeError("Request body is too large")
	}

	message, ok := e.Message.(string)
	if !ok {
		message = http.StatusText(e.Code)
	}
	return &errs.HTTPError{
		Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(e.Code)),
		Message: message,
		Status:  e.Code,
	}
}

// GlobalErrorHandler is the single place errors become responses. The
// original error is logged; clients only see the HTTPError body.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	httpErr := toHTTPError(err)

	levelFor(GetLogger(c), httpErr.Status, err).
		Int("status", httpErr.Status).
		Str("error_code", httpErr.Code).
		Msg(httpErr.Message)

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(httpErr.Status)
		return
	}
	_ = c.JSON(httpErr.Status, httpErr)
}
