// Package router builds the Echo instance: global middleware, the error
// handler and every route group.
package router

import (
	"fmt"
	"net/http"

	"github.com/deppfellow/consultdesk/internal/handler"
	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// multipartOverhead leaves room for part headers and boundaries around an
// upload of exactly the maximum size.
const multipartOverhead = 64 << 10

func NewRouter(s *server.Server, h *handler.Handlers, mw *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
		mw.Global.Secure(),
		mw.Global.CORS(),
		mw.RateLimit.Limit(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerAuthRoutes(v1, h, mw)

	authed := v1.Group("", mw.Auth.RequireAuth)
	registerUserRoutes(authed, h)
	registerDirectoryRoutes(authed, h)
	registerConsultRoutes(authed, h, uploadLimit(s))
	authed.GET("/options/:category", handler.Handle(h.Options.Handler, h.Options.List, http.StatusOK, handler.New[handler.ListOptionsRequest]))

	admin := authed.Group("/admin", mw.Auth.RequireRole(model.RoleAdmin))
	registerAdminRoutes(admin, h)

	return router
}

func uploadLimit(s *server.Server) echo.MiddlewareFunc {
	return echoMiddleware.BodyLimit(fmt.Sprintf("%dB", s.Config.Storage.MaxUploadBytes+multipartOverhead))
}

func registerAuthRoutes(g *echo.Group, h *handler.Handlers, mw *middleware.Middlewares) {
	a := h.Auth
	auth := g.Group("/auth")

	auth.POST("/login", handler.Handle(a.Handler, a.Login, http.StatusOK, handler.New[handler.LoginRequest]))
	auth.POST("/logout", handler.HandleNoContent(a.Handler, a.Logout, http.StatusNoContent, handler.New[handler.EmptyRequest]))
	auth.GET("/me", handler.Handle(a.Handler, a.Me, http.StatusOK, handler.New[handler.EmptyRequest]), mw.Auth.RequireAuth)
}

func registerUserRoutes(g *echo.Group, h *handler.Handlers) {
	u := h.Users
	me := g.Group("/users/me")

	me.GET("", handler.Handle(u.Handler, u.GetMe, http.StatusOK, handler.New[handler.EmptyRequest]))
	me.PUT("", handler.Handle(u.Handler, u.UpdateMe, http.StatusOK, handler.New[handler.UpdateProfileRequest]))
	me.PUT("/password", handler.HandleNoContent(u.Handler, u.ChangePassword, http.StatusNoContent, handler.New[handler.ChangePasswordRequest]))
}

func registerDirectoryRoutes(g *echo.Group, h *handler.Handlers) {
	co := h.Consultants
	consultants := g.Group("/consultants")
	consultants.GET("", handler.Handle(co.Handler, co.List, http.StatusOK, handler.New[handler.ListConsultantsRequest]))
	consultants.GET("/options", handler.Handle(co.Handler, co.Options, http.StatusOK, handler.New[handler.EmptyRequest]))
	consultants.POST("", handler.Handle(co.Handler, co.Create, http.StatusCreated, handler.New[handler.ConsultantRequest]))
	consultants.GET("/:id", handler.Handle(co.Handler, co.Get, http.StatusOK, handler.New[handler.IDRequest]))
	consultants.PUT("/:id", handler.Handle(co.Handler, co.Update, http.StatusOK, handler.New[handler.ConsultantRequest]))
	consultants.DELETE("/:id", handler.HandleNoContent(co.Handler, co.Delete, http.StatusNoContent, handler.New[handler.IDRequest]))

	cl := h.Clients
	clients := g.Group("/clients")
	clients.GET("", handler.Handle(cl.Handler, cl.List, http.StatusOK, handler.New[handler.ListClientsRequest]))
	clients.GET("/options", handler.Handle(cl.Handler, cl.Options, http.StatusOK, handler.New[handler.EmptyRequest]))
	clients.POST("", handler.Handle(cl.Handler, cl.Create, http.StatusCreated, handler.New[handler.ClientRequest]))
	clients.GET("/:id", handler.Handle(cl.Handler, cl.Get, http.StatusOK, handler.New[handler.IDRequest]))
	clients.PUT("/:id", handler.Handle(cl.Handler, cl.Update, http.StatusOK, handler.New[handler.ClientRequest]))
	clients.DELETE("/:id", handler.HandleNoContent(cl.Handler, cl.Delete, http.StatusNoContent, handler.New[handler.IDRequest]))

	lo := h.Locations
	locations := g.Group("/locations")
	locations.GET("", handler.Handle(lo.Handler, lo.List, http.StatusOK, handler.New[handler.ListLocationsRequest]))
	locations.GET("/options", handler.Handle(lo.Handler, lo.Options, http.StatusOK, handler.New[handler.EmptyRequest]))
	locations.POST("", handler.Handle(lo.Handler, lo.Create, http.StatusCreated, handler.New[handler.LocationRequest]))
	locations.GET("/:id", handler.Handle(lo.Handler, lo.Get, http.StatusOK, handler.New[handler.IDRequest]))
	locations.PUT("/:id", handler.Handle(lo.Handler, lo.Update, http.StatusOK, handler.New[handler.LocationRequest]))
	locations.DELETE("/:id", handler.HandleNoContent(lo.Handler, lo.Delete, http.StatusNoContent, handler.New[handler.IDRequest]))
}

func registerConsultRoutes(g *echo.Group, h *handler.Handlers, uploadLimit echo.MiddlewareFunc) {
	c := h.Consults
	consults := g.Group("/consults")
	consults.GET("", handler.Handle(c.Handler, c.List, http.StatusOK, handler.New[handler.ListConsultsRequest]))
	consults.GET("/events", handler.Handle(c.Handler, c.Events, http.StatusOK, handler.New[handler.EventsRequest]))
	consults.POST("", handler.Handle(c.Handler, c.Create, http.StatusCreated, handler.New[handler.ConsultRequest]))
	consults.GET("/:id", handler.Handle(c.Handler, c.Get, http.StatusOK, handler.New[handler.IDRequest]))
	consults.PUT("/:id", handler.Handle(c.Handler, c.Update, http.StatusOK, handler.New[handler.ConsultRequest]))
	consults.PATCH("/:id/status", handler.Handle(c.Handler, c.UpdateStatus, http.StatusOK, handler.New[handler.ConsultStatusRequest]))
	consults.DELETE("/:id", handler.HandleNoContent(c.Handler, c.Delete, http.StatusNoContent, handler.New[handler.IDRequest]))

	a := h.Attachments
	consults.GET("/:id/attachments", handler.Handle(a.Handler, a.List, http.StatusOK, handler.New[handler.IDRequest]))
	consults.POST("/:id/attachments", handler.Handle(a.Handler, a.Upload, http.StatusCreated, handler.New[handler.IDRequest]), uploadLimit)

	attachments := g.Group("/attachments")
	attachments.GET("/:id/download", handler.HandleFile(a.Handler, a.Download, handler.New[handler.IDRequest]))
	attachments.DELETE("/:id", handler.HandleNoContent(a.Handler, a.Delete, http.StatusNoContent, handler.New[handler.IDRequest]))
}

func registerAdminRoutes(g *echo.Group, h *handler.Handlers) {
	a := h.Admin

	g.GET("/users", handler.Handle(a.Handler, a.ListUsers, http.StatusOK, handler.New[handler.ListUsersRequest]))
	g.POST("/users", handler.Handle(a.Handler, a.CreateUser, http.StatusCreated, handler.New[handler.CreateUserRequest]))
	g.PUT("/users/:id", handler.Handle(a.Handler, a.UpdateUser, http.StatusOK, handler.New[handler.UpdateUserRequest]))
	g.DELETE("/users/:id", handler.HandleNoContent(a.Handler, a.DeactivateUser, http.StatusNoContent, handler.New[handler.IDRequest]))
	g.DELETE("/users/:id/sessions", handler.Handle(a.Handler, a.ExpireSessions, http.StatusOK, handler.New[handler.IDRequest]))
	g.POST("/cache/flush", handler.Handle(a.Handler, a.FlushCache, http.StatusOK, handler.New[handler.EmptyRequest]))

	g.POST("/options", handler.Handle(a.Handler, a.CreateOption, http.StatusCreated, handler.New[handler.OptionRequest]))
	g.PUT("/options/:id", handler.Handle(a.Handler, a.UpdateOption, http.StatusOK, handler.New[handler.UpdateOptionRequest]))
	g.DELETE("/options/:id", handler.HandleNoContent(a.Handler, a.DeleteOption, http.StatusNoContent, handler.New[handler.IDRequest]))
}
