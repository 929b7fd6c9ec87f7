package handler

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/service"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type selfService interface {
	Me(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in service.UpdateProfileInput) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, in service.ChangePasswordInput) error
}

type UserHandler struct {
	Handler
	users selfService
}

func NewUserHandler(s *server.Server, users selfService) *UserHandler {
	return &UserHandler{
		Handler: NewHandler(s),
		users:   users,
	}
}

type UpdateProfileRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	FullName string `json:"fullName" form:"fullName" validate:"required,min=1,max=200"`
}

func (r *UpdateProfileRequest) Validate() error {
	return validation.Struct(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" form:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"required,min=8,max=128"`
}

func (r *ChangePasswordRequest) Validate() error {
	return validation.Struct(r)
}

func (h *UserHandler) GetMe(c echo.Context, _ *EmptyRequest) (*model.User, error) {
	return h.users.Me(c.Request().Context(), middleware.GetUserUUID(c))
}

func (h *UserHandler) UpdateMe(c echo.Context, req *UpdateProfileRequest) (*model.User, error) {
	return h.users.UpdateProfile(c.Request().Context(), middleware.GetUserUUID(c), service.UpdateProfileInput{
		Email:    req.Email,
		FullName: req.FullName,
	})
}

func (h *UserHandler) ChangePassword(c echo.Context, req *ChangePasswordRequest) error {
	return h.users.ChangePassword(c.Request().Context(), middleware.GetUserUUID(c), service.ChangePasswordInput{
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
}
