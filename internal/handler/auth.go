package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/service"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type authService interface {
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, token string) error
}

type profileService interface {
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
}

type AuthHandler struct {
	Handler
	auth  authService
	users profileService
}

func NewAuthHandler(s *server.Server, auth authService, users profileService) *AuthHandler {
	return &AuthHandler{
		Handler: NewHandler(s),
		auth:    auth,
		users:   users,
	}
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

func (r *LoginRequest) Validate() error {
	return validation.Struct(r)
}

type LoginResponse struct {
	User      *model.User `json:"user"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cfg := h.server.Config.Auth
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) Login(c echo.Context, req *LoginRequest) (*LoginResponse, error) {
	res, err := h.auth.Login(c.Request().Context(), service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
		IP:        c.RealIP(),
	})
	if err != nil {
		return nil, err
	}

	c.SetCookie(h.sessionCookie(res.Token, res.ExpiresAt))

	return &LoginResponse{User: res.User, ExpiresAt: res.ExpiresAt}, nil
}

// Logout always clears the cookie, even when the session was already gone.
func (h *AuthHandler) Logout(c echo.Context, _ *EmptyRequest) error {
	var token string
	if cookie, err := c.Cookie(h.server.Config.Auth.CookieName); err == nil {
		token = cookie.Value
	}

	expired := h.sessionCookie("", time.Unix(0, 0))
	expired.MaxAge = -1
	c.SetCookie(expired)

	return h.auth.Logout(c.Request().Context(), token)
}

type MeResponse struct {
	User      *model.User `json:"user"`
	SessionID uuid.UUID   `json:"sessionId"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (h *AuthHandler) Me(c echo.Context, _ *EmptyRequest) (*MeResponse, error) {
	su := middleware.GetSessionUser(c)

	user, err := h.users.Me(c.Request().Context(), su.UserID)
	if err != nil {
		return nil, err
	}

	return &MeResponse{User: user, SessionID: su.SessionID, ExpiresAt: su.ExpiresAt}, nil
}
