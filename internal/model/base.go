// Package model holds the domain types shared by repositories, services and
// handlers. Field tags serve both pgx row scanning (db) and JSON responses.
package model

import (
	"time"

	"github.com/google/uuid"
)

type BaseWithId struct {
	ID uuid.UUID `json:"id" db:"id"`
}

type BaseWithCreatedAt struct {
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type BaseWithUpdatedAt struct {
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type Base struct {
	BaseWithId
	BaseWithCreatedAt
	BaseWithUpdatedAt
}

// LookupOption is an {id,label} pair used to fill select inputs.
type LookupOption struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Label string    `json:"label" db:"label"`
}

// PaginatedResponse is the envelope for every list endpoint.
type PaginatedResponse[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPaginatedResponse fills in TotalPages from total and limit.
func NewPaginatedResponse[T any](data []T, page, limit, total int) *PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return &PaginatedResponse[T]{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

// Pagination carries normalized page/limit values.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps page to >= 1 and limit to 1..MaxPageSize, defaulting
// an unset limit to DefaultPageSize.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
