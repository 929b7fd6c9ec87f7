package handler

import (
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/deppfellow/consultdesk/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health      *HealthHandler
	Metrics     *MetricsHandler
	Auth        *AuthHandler
	Users       *UserHandler
	Admin       *AdminHandler
	Consultants *ConsultantHandler
	Clients     *ClientHandler
	Locations   *LocationHandler
	Consults    *ConsultHandler
	Attachments *AttachmentHandler
	Options     *OptionHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(s),
		Metrics:     NewMetricsHandler(s),
		Auth:        NewAuthHandler(s, services.Auth, services.Users),
		Users:       NewUserHandler(s, services.Users),
		Admin:       NewAdminHandler(s, services.Users, services.Options),
		Consultants: NewConsultantHandler(s, services.Consultants),
		Clients:     NewClientHandler(s, services.Clients),
		Locations:   NewLocationHandler(s, services.Locations),
		Consults:    NewConsultHandler(s, services.Consults),
		Attachments: NewAttachmentHandler(s, services.Attachments),
		Options:     NewOptionHandler(s, services.Options),
	}
}
