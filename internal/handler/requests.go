package handler

import (
	"github.com/deppfellow/consultdesk/internal/model"
	"github.com/deppfellow/consultdesk/internal/validation"
	"github.com/google/uuid"
)

type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// IDRequest binds the :id path parameter.
type IDRequest struct {
	ID string `param:"id" json:"-" form:"-" validate:"required,uuid"`
}

func (r *IDRequest) Validate() error {
	return validation.Struct(r)
}

func (r *IDRequest) UUID() uuid.UUID {
	return validation.MustUUID(r.ID)
}

// OptionalID is embedded by payloads shared between create and update
// routes; only the update route has an :id.
type OptionalID struct {
	ID string `param:"id" json:"-" form:"-" validate:"omitempty,uuid"`
}

// UUID is uuid.Nil when no id was bound.
func (r *OptionalID) UUID() uuid.UUID {
	if r.ID == "" {
		return uuid.Nil
	}
	return validation.MustUUID(r.ID)
}

// PageQuery is embedded by list requests.
type PageQuery struct {
	Page     int `query:"page" json:"-" validate:"omitempty,min=1"`
	PageSize int `query:"page_size" json:"-" validate:"omitempty,min=1,max=100"`
}

func (q PageQuery) Pagination() model.Pagination {
	return model.NewPagination(q.Page, q.PageSize)
}

// New returns a zero request value; routes pass New[T] as the per-call
// constructor to Handle.
func New[T any]() *T {
	return new(T)
}
