package handler

import (
	"context"
	"time"

	"github.com/deppfellow/consultdesk/internal/middleware"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/service"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type consultService interface {
	Create(ctx context.Context, actorID uuid.UUID, in service.ConsultInput) (*model.Consult, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Consult, error)
	List(ctx context.Context, f model.ConsultFilter) (*model.PaginatedResponse[model.Consult], error)
	Events(ctx context.Context, start, end time.Time, consultantID *uuid.UUID) ([]model.CalendarEvent, error)
	Update(ctx context.Context, id uuid.UUID, in service.ConsultInput) (*model.Consult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ConsultStatus) (*model.Consult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ConsultHandler struct {
	Handler
	consults consultService
}

func NewConsultHandler(s *server.Server, consults consultService) *ConsultHandler {
	return &ConsultHandler{Handler: NewHandler(s), consults: consults}
}

type ListConsultsRequest struct {
	PageQuery
	ConsultantID string `query:"consultant_id" validate:"omitempty,uuid"`
	ClientID     string `query:"client_id" validate:"omitempty,uuid"`
	LocationID   string `query:"location_id" validate:"omitempty,uuid"`
	Status       string `query:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	From         string `query:"from"`
	To           string `query:"to"`

	from, to *time.Time
}

func (r *ListConsultsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var err error
	if r.from, err = validation.OptionalTime("from", r.From); err != nil {
		return err
	}
	r.to, err = validation.OptionalTime("to", r.To)
	return err
}

type EventsRequest struct {
	Start        string `query:"start" validate:"required"`
	End          string `query:"end" validate:"required"`
	ConsultantID string `query:"consultant_id" validate:"omitempty,uuid"`

	start, end time.Time
}

func (r *EventsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var err error
	if r.start, err = validation.RequiredTime("start", r.Start); err != nil {
		return err
	}
	r.end, err = validation.RequiredTime("end", r.End)
	return err
}

type ConsultRequest struct {
	OptionalID
	ConsultantID string `json:"consultantId" form:"consultantId" validate:"required,uuid"`
	ClientID     string `json:"clientId" form:"clientId" validate:"required,uuid"`
	LocationID   string `json:"locationId" form:"locationId" validate:"omitempty,uuid"`
	Title        string `json:"title" form:"title" validate:"required,max=200"`
	Notes        string `json:"notes" form:"notes" validate:"max=5000"`
	Status       string `json:"status" form:"status" validate:"omitempty,oneof=scheduled completed cancelled no_show"`
	StartsAt     string `json:"startsAt" form:"startsAt" validate:"required"`
	EndsAt       string `json:"endsAt" form:"endsAt" validate:"required"`

	startsAt, endsAt time.Time
}

func (r *ConsultRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var err error
	if r.startsAt, err = validation.RequiredTime("startsAt", r.StartsAt); err != nil {
		return err
	}
	r.endsAt, err = validation.RequiredTime("endsAt", r.EndsAt)
	return err
}

func (r *ConsultRequest) input() service.ConsultInput {
	return service.ConsultInput{
		ConsultantID: validation.MustUUID(r.ConsultantID),
		ClientID:     validation.MustUUID(r.ClientID),
		LocationID:   validation.OptionalUUID(r.LocationID),
		Title:        r.Title,
		Notes:        r.Notes,
		Status:       model.ConsultStatus(r.Status),
		StartsAt:     r.startsAt,
		EndsAt:       r.endsAt,
	}
}

type ConsultStatusRequest struct {
	IDRequest
	Status string `json:"status" form:"status" validate:"required,oneof=scheduled completed cancelled no_show"`
}

func (r *ConsultStatusRequest) Validate() error {
	return validation.Struct(r)
}

func (h *ConsultHandler) List(c echo.Context, req *ListConsultsRequest) (*model.PaginatedResponse[model.Consult], error) {
	return h.consults.List(c.Request().Context(), model.ConsultFilter{
		ConsultantID: validation.OptionalUUID(req.ConsultantID),
		ClientID:     validation.OptionalUUID(req.ClientID),
		LocationID:   validation.OptionalUUID(req.LocationID),
		Status:       model.ConsultStatus(req.Status),
		From:         req.from,
		To:           req.to,
		Pagination:   req.Pagination(),
	})
}

func (h *ConsultHandler) Events(c echo.Context, req *EventsRequest) ([]model.CalendarEvent, error) {
	return h.consults.Events(c.Request().Context(), req.start, req.end, validation.OptionalUUID(req.ConsultantID))
}

func (h *ConsultHandler) Get(c echo.Context, req *IDRequest) (*model.Consult, error) {
	return h.consults.Get(c.Request().Context(), req.UUID())
}

func (h *ConsultHandler) Create(c echo.Context, req *ConsultRequest) (*model.Consult, error) {
	return h.consults.Create(c.Request().Context(), middleware.GetUserUUID(c), req.input())
}

func (h *ConsultHandler) Update(c echo.Context, req *ConsultRequest) (*model.Consult, error) {
	return h.consults.Update(c.Request().Context(), req.UUID(), req.input())
}

func (h *ConsultHandler) UpdateStatus(c echo.Context, req *ConsultStatusRequest) (*model.Consult, error) {
	return h.consults.UpdateStatus(c.Request().Context(), req.UUID(), model.ConsultStatus(req.Status))
}

func (h *ConsultHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.consults.Delete(c.Request().Context(), req.UUID())
}
