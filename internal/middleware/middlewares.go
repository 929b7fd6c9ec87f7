package middleware

import (
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Middlewares groups every middleware component the router installs.
//
// Each component is built once here from the shared *server.Server, then the
// router picks the pieces it needs:
//   - the global chain on every request (request id, tracing, context logger,
//     request log, recover, secure headers, CORS, rate limit)
//   - RequireAuth and RequireRole on the authenticated and admin groups
//   - GlobalErrorHandler as echo's HTTPErrorHandler
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// error handler that turns every returned error into an errs.HTTPError body.
	Global *GlobalMiddlewares

	// Auth resolves the session cookie into a model.SessionUser and enforces
	// roles. It depends on a SessionValidator, normally the auth service.
	Auth *AuthMiddleware

	// ContextEnhancer attaches the request-scoped zerolog logger carrying
	// request_id, method, path, ip and the New Relic trace context.
	ContextEnhancer *ContextEnhancer

	// Tracing starts New Relic transactions and tags them with request, user
	// and route attributes. Both of its middlewares are no-ops without an agent.
	Tracing *TracingMiddleware

	// RateLimit applies the per-IP token bucket. /status and /metrics are
	// exempt.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares wires every component. The New Relic application comes
// from the logger service and stays nil when no license key is configured.
func NewMiddlewares(s *server.Server, sessions SessionValidator) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, sessions),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
