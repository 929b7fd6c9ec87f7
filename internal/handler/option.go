package handler

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/labstack/echo/v4"
)

type optionLister interface {
	List(ctx context.Context, category model.OptionCategory, includeInactive bool) ([]model.SelectOption, error)
}

type OptionHandler struct {
	Handler
	options optionLister
}

func NewOptionHandler(s *server.Server, options optionLister) *OptionHandler {
	return &OptionHandler{Handler: NewHandler(s), options: options}
}

type ListOptionsRequest struct {
	Category string `param:"category" validate:"required,oneof=consultant_specialty client_type consult_status"`
	// IncludeInactive is honoured for admins only.
	IncludeInactive string `query:"include_inactive" validate:"omitempty,oneof=true false"`
}

func (r *ListOptionsRequest) Validate() error {
	return validation.Struct(r)
}

func (h *OptionHandler) List(c echo.Context, req *ListOptionsRequest) ([]model.SelectOption, error) {
	includeInactive := req.IncludeInactive == "true" && middleware.GetUserRole(c) == model.RoleAdmin
	return h.options.List(c.Request().Context(), model.OptionCategory(req.Category), includeInactive)
}
