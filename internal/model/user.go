package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleStaff
}

type User struct {
	Base
	Email        string `json:"email" db:"email"`
	FullName     string `json:"fullName" db:"full_name"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	Active       bool   `json:"active" db:"active"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Session struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	TokenHash string    `json:"-" db:"token_hash"`
	UserAgent string    `json:"userAgent" db:"user_agent"`
	IP        string    `json:"ip" db:"ip"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
}

// SessionUser is the joined session + user row produced by session
// validation. It is what the query cache stores for a session token, so it
// carries no password hash.
type SessionUser struct {
	SessionID uuid.UUID `json:"sessionId" db:"session_id"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"fullName" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
}

// Expired reports whether the session is no longer valid at now.
func (s *SessionUser) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type UserFilter struct {
	Query  string
	Role   Role
	Active *bool
	Pagination
}
