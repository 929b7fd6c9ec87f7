// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated
// input from handlers, enforces the domain rules, and calls repositories.
// Rule violations come back as *errs.HTTPError; repository errors are
// returned untouched for the global error handler to translate.
package service

import (
	"context"
	"time"

	"github.com/deppfellow/consultdesk/internal/lib/job"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/repository"
	"github.com/deppfellow/consultdesk/internal/server"
	"github.com/google/uuid"
)

type Services struct {
	Auth        *AuthService
	Users       *UserService
	Locations   *LocationService
	Consultants *ConsultantService
	Clients     *ClientService
	Consults    *ConsultService
	Attachments *AttachmentService
	Options     *OptionService
	Job         *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	purger := NewBlobPurger(s.Blob, s.Job, s.Logger)

	auth := NewAuthService(&s.Config.Auth, repos.Users, repos.Sessions, s.Logger)
	options := NewOptionService(repos.Options)

	return &Services{
		Auth:        auth,
		Users:       NewUserService(repos.Users, auth),
		Locations:   NewLocationService(repos.Locations),
		Consultants: NewConsultantService(repos.Consultants, options),
		Clients:     NewClientService(repos.Clients, options),
		Consults:    NewConsultService(repos.Consults, purger),
		Attachments: NewAttachmentService(repos.Attachments, repos.Consults, s.Blob, purger, s.Config.Storage.MaxUploadBytes),
		Options:     options,
		Job:         s.Job,
	}, nil
}

type userStore interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, f model.UserFilter) (*model.PaginatedResponse[model.User], error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Count(ctx context.Context) (int, error)
	CountActiveAdmins(ctx context.Context) (int, error)
}

type sessionStore interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	FindActive(ctx context.Context, tokenHash string) (*model.SessionUser, error)
	Evict(ctx context.Context, tokenHashes ...string) error
	Expire(ctx context.Context, tokenHash string) (bool, error)
	ExpireForUser(ctx context.Context, userID uuid.UUID) ([]string, error)
	LiveTokenHashes(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type locationStore interface {
	Create(ctx context.Context, l *model.Location) (*model.Location, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	List(ctx context.Context, f model.LocationFilter) (*model.PaginatedResponse[model.Location], error)
	Options(ctx context.Context) ([]model.LookupOption, error)
	Update(ctx context.Context, l *model.Location) (*model.Location, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type consultantStore interface {
	Create(ctx context.Context, c *model.Consultant) (*model.Consultant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Consultant, error)
	List(ctx context.Context, f model.ConsultantFilter) (*model.PaginatedResponse[model.Consultant], error)
	Options(ctx context.Context) ([]model.LookupOption, error)
	Update(ctx context.Context, c *model.Consultant) (*model.Consultant, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type clientStore interface {
	Create(ctx context.Context, c *model.Client) (*model.Client, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, f model.ClientFilter) (*model.PaginatedResponse[model.Client], error)
	Options(ctx context.Context) ([]model.LookupOption, error)
	Update(ctx context.Context, c *model.Client) (*model.Client, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type consultStore interface {
	Create(ctx context.Context, c *model.Consult) (*model.Consult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Consult, error)
	List(ctx context.Context, f model.ConsultFilter) (*model.PaginatedResponse[model.Consult], error)
	Events(ctx context.Context, start, end time.Time, consultantID *uuid.UUID) ([]model.CalendarEvent, error)
	HasOverlap(ctx context.Context, consultantID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
	Update(ctx context.Context, c *model.Consult) (*model.Consult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ConsultStatus) (*model.Consult, error)
	Delete(ctx context.Context, id uuid.UUID) ([]string, error)
}

type attachmentStore interface {
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
	ListByConsult(ctx context.Context, consultID uuid.UUID) ([]model.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) (*model.Attachment, error)
}

type optionStore interface {
	ListByCategory(ctx context.Context, category model.OptionCategory, includeInactive bool) ([]model.SelectOption, error)
	ValueExists(ctx context.Context, category model.OptionCategory, value string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.SelectOption, error)
	Create(ctx context.Context, o *model.SelectOption) (*model.SelectOption, error)
	Update(ctx context.Context, o *model.SelectOption) (*model.SelectOption, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
