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

type userAdminService interface {
	List(ctx context.Context, f model.UserFilter) (*model.PaginatedResponse[model.User], error)
	Create(ctx context.Context, in service.CreateUserInput) (*model.User, error)
	Update(ctx context.Context, actorID, userID uuid.UUID, in service.UpdateUserInput) (*model.User, error)
	Deactivate(ctx context.Context, actorID, userID uuid.UUID) error
	ExpireSessions(ctx context.Context, userID uuid.UUID) (int, error)
}

type optionAdminService interface {
	Create(ctx context.Context, in service.OptionInput) (*model.SelectOption, error)
	Update(ctx context.Context, id uuid.UUID, in service.OptionInput) (*model.SelectOption, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type AdminHandler struct {
	Handler
	users   userAdminService
	options optionAdminService
}

func NewAdminHandler(s *server.Server, users userAdminService, options optionAdminService) *AdminHandler {
	return &AdminHandler{
		Handler: NewHandler(s),
		users:   users,
		options: options,
	}
}

type ListUsersRequest struct {
	PageQuery
	Query  string `query:"q" validate:"max=200"`
	Role   string `query:"role" validate:"omitempty,oneof=admin staff"`
	Active string `query:"active" validate:"omitempty,oneof=true false"`
}

func (r *ListUsersRequest) Validate() error {
	return validation.Struct(r)
}

type CreateUserRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	FullName string `json:"fullName" form:"fullName" validate:"required,max=200"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=128"`
	Role     string `json:"role" form:"role" validate:"required,oneof=admin staff"`
}

func (r *CreateUserRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateUserRequest struct {
	IDRequest
	Email    string `json:"email" form:"email" validate:"required,email,max=254"`
	FullName string `json:"fullName" form:"fullName" validate:"required,max=200"`
	Role     string `json:"role" form:"role" validate:"required,oneof=admin staff"`
	Active   *bool  `json:"active" form:"active" validate:"required"`
}

func (r *UpdateUserRequest) Validate() error {
	return validation.Struct(r)
}

type ExpireSessionsResponse struct {
	Expired int `json:"expired"`
}

type FlushCacheResponse struct {
	Deleted int64 `json:"deleted"`
}

type OptionRequest struct {
	Category  string `json:"category" form:"category" validate:"required,oneof=consultant_specialty client_type consult_status"`
	Value     string `json:"value" form:"value" validate:"required,max=64"`
	Label     string `json:"label" form:"label" validate:"required,max=200"`
	SortOrder int    `json:"sortOrder" form:"sortOrder" validate:"min=0,max=10000"`
	Active    *bool  `json:"active" form:"active"`
}

func (r *OptionRequest) Validate() error {
	return validation.Struct(r)
}

func (r *OptionRequest) input() service.OptionInput {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return service.OptionInput{
		Category:  model.OptionCategory(r.Category),
		Value:     r.Value,
		Label:     r.Label,
		SortOrder: r.SortOrder,
		Active:    active,
	}
}

type UpdateOptionRequest struct {
	IDRequest
	Label     string `json:"label" form:"label" validate:"required,max=200"`
	SortOrder int    `json:"sortOrder" form:"sortOrder" validate:"min=0,max=10000"`
	Active    *bool  `json:"active" form:"active" validate:"required"`
}

func (r *UpdateOptionRequest) Validate() error {
	return validation.Struct(r)
}

func (h *AdminHandler) ListUsers(c echo.Context, req *ListUsersRequest) (*model.PaginatedResponse[model.User], error) {
	return h.users.List(c.Request().Context(), model.UserFilter{
		Query:      req.Query,
		Role:       model.Role(req.Role),
		Active:     validation.OptionalBool(req.Active),
		Pagination: req.Pagination(),
	})
}

func (h *AdminHandler) CreateUser(c echo.Context, req *CreateUserRequest) (*model.User, error) {
	return h.users.Create(c.Request().Context(), service.CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     model.Role(req.Role),
	})
}

func (h *AdminHandler) UpdateUser(c echo.Context, req *UpdateUserRequest) (*model.User, error) {
	return h.users.Update(c.Request().Context(), middleware.GetUserUUID(c), req.UUID(), service.UpdateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Role:     model.Role(req.Role),
		Active:   *req.Active,
	})
}

func (h *AdminHandler) DeactivateUser(c echo.Context, req *IDRequest) error {
	return h.users.Deactivate(c.Request().Context(), middleware.GetUserUUID(c), req.UUID())
}

func (h *AdminHandler) ExpireSessions(c echo.Context, req *IDRequest) (*ExpireSessionsResponse, error) {
	n, err := h.users.ExpireSessions(c.Request().Context(), req.UUID())
	if err != nil {
		return nil, err
	}
	return &ExpireSessionsResponse{Expired: n}, nil
}

func (h *AdminHandler) FlushCache(c echo.Context, _ *EmptyRequest) (*FlushCacheResponse, error) {
	n, err := h.server.Cache.Flush(c.Request().Context())
	if err != nil {
		return nil, err
	}

	middleware.GetLogger(c).Info().Int64("deleted", n).Msg("query cache flushed")

	return &FlushCacheResponse{Deleted: n}, nil
}

func (h *AdminHandler) CreateOption(c echo.Context, req *OptionRequest) (*model.SelectOption, error) {
	return h.options.Create(c.Request().Context(), req.input())
}

func (h *AdminHandler) UpdateOption(c echo.Context, req *UpdateOptionRequest) (*model.SelectOption, error) {
	return h.options.Update(c.Request().Context(), req.UUID(), service.OptionInput{
		Label:     req.Label,
		SortOrder: req.SortOrder,
		Active:    *req.Active,
	})
}

func (h *AdminHandler) DeleteOption(c echo.Context, req *IDRequest) error {
	return h.options.Delete(c.Request().Context(), req.UUID())
}
