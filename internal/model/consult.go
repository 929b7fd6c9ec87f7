package model

import (
	"time"

	"github.com/google/uuid"
)

type ConsultStatus string

const (
	ConsultStatusScheduled ConsultStatus = "scheduled"
	ConsultStatusCompleted ConsultStatus = "completed"
	ConsultStatusCancelled ConsultStatus = "cancelled"
	ConsultStatusNoShow    ConsultStatus = "no_show"
)

func (s ConsultStatus) Valid() bool {
	switch s {
	case ConsultStatusScheduled, ConsultStatusCompleted, ConsultStatusCancelled, ConsultStatusNoShow:
		return true
	}
	return false
}

// Blocking reports whether a consult in this status occupies the
// consultant's time.
func (s ConsultStatus) Blocking() bool {
	return s != ConsultStatusCancelled
}

const (
	MaxConsultDuration = 24 * time.Hour
	MaxEventWindow     = 366 * 24 * time.Hour
)

type Consult struct {
	Base
	ConsultantID uuid.UUID     `json:"consultantId" db:"consultant_id"`
	ClientID     uuid.UUID     `json:"clientId" db:"client_id"`
	LocationID   *uuid.UUID    `json:"locationId" db:"location_id"`
	Title        string        `json:"title" db:"title"`
	Notes        string        `json:"notes" db:"notes"`
	Status       ConsultStatus `json:"status" db:"status"`
	StartsAt     time.Time     `json:"startsAt" db:"starts_at"`
	EndsAt       time.Time     `json:"endsAt" db:"ends_at"`
	CreatedBy    *uuid.UUID    `json:"createdBy" db:"created_by"`
}

type ConsultFilter struct {
	ConsultantID *uuid.UUID
	ClientID     *uuid.UUID
	LocationID   *uuid.UUID
	Status       ConsultStatus
	From         *time.Time
	To           *time.Time
	Pagination
}

// CalendarEvent is the shape consumed by calendar widgets.
type CalendarEvent struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Title        string        `json:"title" db:"title"`
	Start        time.Time     `json:"start" db:"starts_at"`
	End          time.Time     `json:"end" db:"ends_at"`
	Status       ConsultStatus `json:"status" db:"status"`
	ConsultantID uuid.UUID     `json:"consultantId" db:"consultant_id"`
	ClientID     uuid.UUID     `json:"clientId" db:"client_id"`
	LocationID   *uuid.UUID    `json:"locationId" db:"location_id"`
}

type Attachment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	ConsultID   uuid.UUID  `json:"consultId" db:"consult_id"`
	FileName    string     `json:"fileName" db:"file_name"`
	ContentType string     `json:"contentType" db:"content_type"`
	SizeBytes   int64      `json:"sizeBytes" db:"size_bytes"`
	StorageKey  string     `json:"-" db:"storage_key"`
	UploadedBy  *uuid.UUID `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
}
