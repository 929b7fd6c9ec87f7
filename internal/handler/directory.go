package handler

import (
	"context"

	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// directoryService is the CRUD surface shared by consultants, clients and
// locations.
type directoryService[T any, F any] interface {
	Create(ctx context.Context, v *T) (*T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, f F) (*model.PaginatedResponse[T], error)
	Options(ctx context.Context) ([]model.LookupOption, error)
	Update(ctx context.Context, v *T) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ActiveQuery struct {
	Query  string `query:"q" validate:"max=200"`
	Active string `query:"active" validate:"omitempty,oneof=true false"`
}

// Consultants

type ConsultantHandler struct {
	Handler
	consultants directoryService[model.Consultant, model.ConsultantFilter]
}

func NewConsultantHandler(s *server.Server, consultants directoryService[model.Consultant, model.ConsultantFilter]) *ConsultantHandler {
	return &ConsultantHandler{Handler: NewHandler(s), consultants: consultants}
}

type ListConsultantsRequest struct {
	PageQuery
	ActiveQuery
	Specialty  string `query:"specialty" validate:"max=64"`
	LocationID string `query:"location_id" validate:"omitempty,uuid"`
}

func (r *ListConsultantsRequest) Validate() error {
	return validation.Struct(r)
}

type ConsultantRequest struct {
	OptionalID
	FirstName  string `json:"firstName" form:"firstName" validate:"required,max=100"`
	LastName   string `json:"lastName" form:"lastName" validate:"required,max=100"`
	Email      string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone      string `json:"phone" form:"phone" validate:"max=50"`
	Specialty  string `json:"specialty" form:"specialty" validate:"max=64"`
	LocationID string `json:"locationId" form:"locationId" validate:"omitempty,uuid"`
	Active     *bool  `json:"active" form:"active"`
}

func (r *ConsultantRequest) Validate() error {
	return validation.Struct(r)
}

func (r *ConsultantRequest) model() *model.Consultant {
	c := &model.Consultant{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		Specialty:  r.Specialty,
		LocationID: validation.OptionalUUID(r.LocationID),
		Active:     r.Active == nil || *r.Active,
	}
	c.ID = r.UUID()
	return c
}

func (h *ConsultantHandler) List(c echo.Context, req *ListConsultantsRequest) (*model.PaginatedResponse[model.Consultant], error) {
	return h.consultants.List(c.Request().Context(), model.ConsultantFilter{
		Query:      req.Query,
		Specialty:  req.Specialty,
		LocationID: validation.OptionalUUID(req.LocationID),
		Active:     validation.OptionalBool(req.Active),
		Pagination: req.Pagination(),
	})
}

func (h *ConsultantHandler) Options(c echo.Context, _ *EmptyRequest) ([]model.LookupOption, error) {
	return h.consultants.Options(c.Request().Context())
}

func (h *ConsultantHandler) Get(c echo.Context, req *IDRequest) (*model.Consultant, error) {
	return h.consultants.Get(c.Request().Context(), req.UUID())
}

func (h *ConsultantHandler) Create(c echo.Context, req *ConsultantRequest) (*model.Consultant, error) {
	return h.consultants.Create(c.Request().Context(), req.model())
}

func (h *ConsultantHandler) Update(c echo.Context, req *ConsultantRequest) (*model.Consultant, error) {
	return h.consultants.Update(c.Request().Context(), req.model())
}

func (h *ConsultantHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.consultants.Delete(c.Request().Context(), req.UUID())
}

// Clients

type ClientHandler struct {
	Handler
	clients directoryService[model.Client, model.ClientFilter]
}

func NewClientHandler(s *server.Server, clients directoryService[model.Client, model.ClientFilter]) *ClientHandler {
	return &ClientHandler{Handler: NewHandler(s), clients: clients}
}

type ListClientsRequest struct {
	PageQuery
	ActiveQuery
	ClientType string `query:"client_type" validate:"max=64"`
}

func (r *ListClientsRequest) Validate() error {
	return validation.Struct(r)
}

type ClientRequest struct {
	OptionalID
	Name       string `json:"name" form:"name" validate:"required,max=200"`
	Email      string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	Phone      string `json:"phone" form:"phone" validate:"max=50"`
	ClientType string `json:"clientType" form:"clientType" validate:"max=64"`
	Notes      string `json:"notes" form:"notes" validate:"max=5000"`
	Active     *bool  `json:"active" form:"active"`
}

func (r *ClientRequest) Validate() error {
	return validation.Struct(r)
}

func (r *ClientRequest) model() *model.Client {
	c := &model.Client{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		ClientType: r.ClientType,
		Notes:      r.Notes,
		Active:     r.Active == nil || *r.Active,
	}
	c.ID = r.UUID()
	return c
}

func (h *ClientHandler) List(c echo.Context, req *ListClientsRequest) (*model.PaginatedResponse[model.Client], error) {
	return h.clients.List(c.Request().Context(), model.ClientFilter{
		Query:      req.Query,
		ClientType: req.ClientType,
		Active:     validation.OptionalBool(req.Active),
		Pagination: req.Pagination(),
	})
}

func (h *ClientHandler) Options(c echo.Context, _ *EmptyRequest) ([]model.LookupOption, error) {
	return h.clients.Options(c.Request().Context())
}

func (h *ClientHandler) Get(c echo.Context, req *IDRequest) (*model.Client, error) {
	return h.clients.Get(c.Request().Context(), req.UUID())
}

func (h *ClientHandler) Create(c echo.Context, req *ClientRequest) (*model.Client, error) {
	return h.clients.Create(c.Request().Context(), req.model())
}

func (h *ClientHandler) Update(c echo.Context, req *ClientRequest) (*model.Client, error) {
	return h.clients.Update(c.Request().Context(), req.model())
}

func (h *ClientHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.clients.Delete(c.Request().Context(), req.UUID())
}

// Locations

type LocationHandler struct {
	Handler
	locations directoryService[model.Location, model.LocationFilter]
}

func NewLocationHandler(s *server.Server, locations directoryService[model.Location, model.LocationFilter]) *LocationHandler {
	return &LocationHandler{Handler: NewHandler(s), locations: locations}
}

type ListLocationsRequest struct {
	PageQuery
	ActiveQuery
	City string `query:"city" validate:"max=100"`
}

func (r *ListLocationsRequest) Validate() error {
	return validation.Struct(r)
}

type LocationRequest struct {
	OptionalID
	Name    string `json:"name" form:"name" validate:"required,max=200"`
	Address string `json:"address" form:"address" validate:"max=500"`
	City    string `json:"city" form:"city" validate:"max=100"`
	Notes   string `json:"notes" form:"notes" validate:"max=5000"`
	Active  *bool  `json:"active" form:"active"`
}

func (r *LocationRequest) Validate() error {
	return validation.Struct(r)
}

func (r *LocationRequest) model() *model.Location {
	l := &model.Location{
		Name:    r.Name,
		Address: r.Address,
		City:    r.City,
		Notes:   r.Notes,
		Active:  r.Active == nil || *r.Active,
	}
	l.ID = r.UUID()
	return l
}

func (h *LocationHandler) List(c echo.Context, req *ListLocationsRequest) (*model.PaginatedResponse[model.Location], error) {
	return h.locations.List(c.Request().Context(), model.LocationFilter{
		Query:      req.Query,
		City:       req.City,
		Active:     validation.OptionalBool(req.Active),
		Pagination: req.Pagination(),
	})
}

func (h *LocationHandler) Options(c echo.Context, _ *EmptyRequest) ([]model.LookupOption, error) {
	return h.locations.Options(c.Request().Context())
}

func (h *LocationHandler) Get(c echo.Context, req *IDRequest) (*model.Location, error) {
	return h.locations.Get(c.Request().Context(), req.UUID())
}

func (h *LocationHandler) Create(c echo.Context, req *LocationRequest) (*model.Location, error) {
	return h.locations.Create(c.Request().Context(), req.model())
}

func (h *LocationHandler) Update(c echo.Context, req *LocationRequest) (*model.Location, error) {
	return h.locations.Update(c.Request().Context(), req.model())
}

func (h *LocationHandler) Delete(c echo.Context, req *IDRequest) error {
	return h.locations.Delete(c.Request().Context(), req.UUID())
}
