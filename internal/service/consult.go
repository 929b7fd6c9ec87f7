package service

import (
	"context"
	"strings"
	"time"

	"github.com/deppfellow/consultdesk/internal/errs"
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/google/uuid"
)

const CodeConsultConflict = "CONSULT_CONFLICT"

type ConsultService struct {
	consults consultStore
	purger   *BlobPurger
}

func NewConsultService(consults consultStore, purger *BlobPurger) *ConsultService {
	return &ConsultService{consults: consults, purger: purger}
}

type ConsultInput struct {
	ConsultantID uuid.UUID
	ClientID     uuid.UUID
	LocationID   *uuid.UUID
	Title        string
	Notes        string
	Status       model.ConsultStatus
	StartsAt     time.Time
	EndsAt       time.Time
}

func checkTimes(start, end time.Time) error {
	if !end.After(start) {
		return errs.FieldValidationError("endsAt", "must be after startsAt")
	}
	if end.Sub(start) > model.MaxConsultDuration {
		return errs.FieldValidationError("endsAt", "a consult cannot last longer than 24 hours")
	}
	return nil
}

func conflictError() error {
	return errs.NewConflictError("The consultant already has a consult during this time", CodeConsultConflict)
}

func (s *ConsultService) checkOverlap(ctx context.Context, c *model.Consult, excludeID *uuid.UUID) error {
	if !c.Status.Blocking() {
		return nil
	}

	overlap, err := s.consults.HasOverlap(ctx, c.ConsultantID, c.StartsAt, c.EndsAt, excludeID)
	if err != nil {
		return err
	}
	if overlap {
		return conflictError()
	}
	return nil
}

// apply copies the input onto c. An empty Status keeps the consult's current
// status, so only a new consult falls back to scheduled.
func (in ConsultInput) apply(c *model.Consult) error {
	status := in.Status
	if status == "" {
		status = c.Status
	}
	if status == "" {
		status = model.ConsultStatusScheduled
	}
	if !status.Valid() {
		return errs.FieldValidationError("status", "must be one of: scheduled, completed, cancelled, no_show")
	}

	if err := checkTimes(in.StartsAt, in.EndsAt); err != nil {
		return err
	}

	c.ConsultantID = in.ConsultantID
	c.ClientID = in.ClientID
	c.LocationID = in.LocationID
	c.Title = strings.TrimSpace(in.Title)
	c.Notes = in.Notes
	c.Status = status
	c.StartsAt = in.StartsAt.UTC()
	c.EndsAt = in.EndsAt.UTC()
	return nil
}

func (s *ConsultService) Create(ctx context.Context, actorID uuid.UUID, in ConsultInput) (*model.Consult, error) {
	c := &model.Consult{CreatedBy: &actorID}
	if err := in.apply(c); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, c, nil); err != nil {
		return nil, err
	}

	return s.consults.Create(ctx, c)
}

func (s *ConsultService) Get(ctx context.Context, id uuid.UUID) (*model.Consult, error) {
	return s.consults.GetByID(ctx, id)
}

func (s *ConsultService) List(ctx context.Context, f model.ConsultFilter) (*model.PaginatedResponse[model.Consult], error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, errs.FieldValidationError("to", "must not be before from")
	}
	return s.consults.List(ctx, f)
}

// Events returns calendar events for consults intersecting [start, end).
func (s *ConsultService) Events(ctx context.Context, start, end time.Time, consultantID *uuid.UUID) ([]model.CalendarEvent, error) {
	if !end.After(start) {
		return nil, errs.FieldValidationError("end", "must be after start")
	}
	if end.Sub(start) > model.MaxEventWindow {
		return nil, errs.FieldValidationError("end", "the window cannot exceed 366 days")
	}
	return s.consults.Events(ctx, start.UTC(), end.UTC(), consultantID)
}

func (s *ConsultService) Update(ctx context.Context, id uuid.UUID, in ConsultInput) (*model.Consult, error) {
	c, err := s.consults.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := in.apply(c); err != nil {
		return nil, err
	}

	if err := s.checkOverlap(ctx, c, &id); err != nil {
		return nil, err
	}

	return s.consults.Update(ctx, c)
}

// UpdateStatus changes only the status. Cancelling never conflicts;
// reviving a cancelled consult checks the slot again.
func (s *ConsultService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ConsultStatus) (*model.Consult, error) {
	if !status.Valid() {
		return nil, errs.FieldValidationError("status", "must be one of: scheduled, completed, cancelled, no_show")
	}

	c, err := s.consults.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if status.Blocking() && !c.Status.Blocking() {
		c.Status = status
		if err := s.checkOverlap(ctx, c, &id); err != nil {
			return nil, err
		}
	}

	return s.consults.UpdateStatus(ctx, id, status)
}

// Delete removes the consult and its attachment rows, then purges the blobs.
func (s *ConsultService) Delete(ctx context.Context, id uuid.UUID) error {
	keys, err := s.consults.Delete(ctx, id)
	if err != nil {
		return err
	}

	s.purger.Purge(ctx, keys...)
	return nil
}
