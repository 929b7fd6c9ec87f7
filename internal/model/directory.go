package model

import "github.com/google/uuid"

type Location struct {
	Base
	Name    string `json:"name" db:"name"`
	Address string `json:"address" db:"address"`
	City    string `json:"city" db:"city"`
	Notes   string `json:"notes" db:"notes"`
	Active  bool   `json:"active" db:"active"`
}

type LocationFilter struct {
	Query  string
	City   string
	Active *bool
	Pagination
}

type Consultant struct {
	Base
	FirstName  string     `json:"firstName" db:"first_name"`
	LastName   string     `json:"lastName" db:"last_name"`
	Email      string     `json:"email" db:"email"`
	Phone      string     `json:"phone" db:"phone"`
	Specialty  string     `json:"specialty" db:"specialty"`
	LocationID *uuid.UUID `json:"locationId" db:"location_id"`
	Active     bool       `json:"active" db:"active"`
}

func (c *Consultant) FullName() string {
	return c.FirstName + " " + c.LastName
}

type ConsultantFilter struct {
	Query      string
	Specialty  string
	LocationID *uuid.UUID
	Active     *bool
	Pagination
}

type Client struct {
	Base
	Name       string `json:"name" db:"name"`
	Email      string `json:"email" db:"email"`
	Phone      string `json:"phone" db:"phone"`
	ClientType string `json:"clientType" db:"client_type"`
	Notes      string `json:"notes" db:"notes"`
	Active     bool   `json:"active" db:"active"`
}

type ClientFilter struct {
	Query      string
	ClientType string
	Active     *bool
	Pagination
}
