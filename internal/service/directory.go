package service

import (
	"context"
	"strings"

	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

type LocationService struct {
	locations locationStore
}

func NewLocationService(locations locationStore) *LocationService {
	return &LocationService{locations: locations}
}

func (s *LocationService) Create(ctx context.Context, l *model.Location) (*model.Location, error) {
	normalizeLocation(l)
	return s.locations.Create(ctx, l)
}

func (s *LocationService) Get(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	return s.locations.GetByID(ctx, id)
}

func (s *LocationService) List(ctx context.Context, f model.LocationFilter) (*model.PaginatedResponse[model.Location], error) {
	return s.locations.List(ctx, f)
}

func (s *LocationService) Options(ctx context.Context) ([]model.LookupOption, error) {
	return s.locations.Options(ctx)
}

func (s *LocationService) Update(ctx context.Context, l *model.Location) (*model.Location, error) {
	normalizeLocation(l)
	return s.locations.Update(ctx, l)
}

func (s *LocationService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.locations.Delete(ctx, id)
}

func normalizeLocation(l *model.Location) {
	l.Name = strings.TrimSpace(l.Name)
	l.Address = strings.TrimSpace(l.Address)
	l.City = strings.TrimSpace(l.City)
}

type ConsultantService struct {
	consultants consultantStore
	options     *OptionService
}

func NewConsultantService(consultants consultantStore, options *OptionService) *ConsultantService {
	return &ConsultantService{consultants: consultants, options: options}
}

func (s *ConsultantService) Create(ctx context.Context, c *model.Consultant) (*model.Consultant, error) {
	if err := s.check(ctx, c); err != nil {
		return nil, err
	}
	return s.consultants.Create(ctx, c)
}

func (s *ConsultantService) Get(ctx context.Context, id uuid.UUID) (*model.Consultant, error) {
	return s.consultants.GetByID(ctx, id)
}

func (s *ConsultantService) List(ctx context.Context, f model.ConsultantFilter) (*model.PaginatedResponse[model.Consultant], error) {
	return s.consultants.List(ctx, f)
}

func (s *ConsultantService) Options(ctx context.Context) ([]model.LookupOption, error) {
	return s.consultants.Options(ctx)
}

func (s *ConsultantService) Update(ctx context.Context, c *model.Consultant) (*model.Consultant, error) {
	if err := s.check(ctx, c); err != nil {
		return nil, err
	}
	return s.consultants.Update(ctx, c)
}

func (s *ConsultantService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.consultants.Delete(ctx, id)
}

func (s *ConsultantService) check(ctx context.Context, c *model.Consultant) error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	c.Specialty = strings.TrimSpace(c.Specialty)
	return s.options.RequireValue(ctx, model.OptionCategoryConsultantSpecialty, "specialty", c.Specialty)
}

type ClientService struct {
	clients clientStore
	options *OptionService
}

func NewClientService(clients clientStore, options *OptionService) *ClientService {
	return &ClientService{clients: clients, options: options}
}

func (s *ClientService) Create(ctx context.Context, c *model.Client) (*model.Client, error) {
	if err := s.check(ctx, c); err != nil {
		return nil, err
	}
	return s.clients.Create(ctx, c)
}

func (s *ClientService) Get(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *ClientService) List(ctx context.Context, f model.ClientFilter) (*model.PaginatedResponse[model.Client], error) {
	return s.clients.List(ctx, f)
}

func (s *ClientService) Options(ctx context.Context) ([]model.LookupOption, error) {
	return s.clients.Options(ctx)
}

func (s *ClientService) Update(ctx context.Context, c *model.Client) (*model.Client, error) {
	if err := s.check(ctx, c); err != nil {
		return nil, err
	}
	return s.clients.Update(ctx, c)
}

func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.clients.Delete(ctx, id)
}

func (s *ClientService) check(ctx context.Context, c *model.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.ClientType = strings.TrimSpace(c.ClientType)
	return s.options.RequireValue(ctx, model.OptionCategoryClientType, "clientType", c.ClientType)
}
