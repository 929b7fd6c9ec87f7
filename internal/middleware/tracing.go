package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/consultdesk/internal/server"
)

// TracingMiddleware owns the New Relic side of request handling.
//
// It works in two layers:
//  1. NewRelicMiddleware starts a transaction per request and stores it in
//     the request context, where nrpgx5 and nrredis segments find it.
//  2. EnhanceTracing adds consultdesk attributes to that transaction and
//     notices the error a handler returned.
//
// app is nil when the agent is disabled; both layers then pass requests
// through untouched.
type TracingMiddleware struct {
	server *server.Server
	app    *newrelic.Application
}

// NewTracingMiddleware builds the middleware around an optional application.
func NewTracingMiddleware(s *server.Server, app *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{server: s, app: app}
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }

// NewRelicMiddleware returns nrecho's transaction middleware, or a
// pass-through when the agent is off. It must run before EnhanceTracing and
// the context enhancer, which both read the transaction from the context.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.app == nil {
		return passThrough
	}
	return nrecho.Middleware(tm.app)
}

// EnhanceTracing annotates the current transaction.
//
// Attributes recorded:
//   - request.id, http.real_ip and http.user_agent from the request
//   - user.id and user.role once RequireAuth has resolved the session
//   - http.route and resource.id, e.g. "/api/v1/consults/:id" and the id
//   - http.status_code of the written response
//
// Session attributes are read after next returns, since RequireAuth runs on
// the route groups deeper in the chain. Empty values are skipped. A returned
// error is noticed through nrpkgerrors so the stack trace is kept.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			attrs := map[string]any{
				"request.id":      GetRequestID(c),
				"http.real_ip":    c.RealIP(),
				"http.user_agent": c.Request().UserAgent(),
			}

			err := next(c)

			if su := GetSessionUser(c); su != nil {
				attrs["user.id"] = su.UserID.String()
				attrs["user.role"] = string(su.Role)
			}
			attrs["http.route"] = c.Path()
			attrs["resource.id"] = c.Param("id")
			attrs["http.status_code"] = c.Response().Status

			for k, v := range attrs {
				if v != "" {
					txn.AddAttribute(k, v)
				}
			}
			if err != nil {
				txn.NoticeError(nrpkgerrors.Wrap(err))
			}
			return err
		}
	}
}
