package dto

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the API shape of an organization. Locations is null unless
// the organization was loaded eagerly.
type Organization struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Phone     string     `json:"phone,omitempty"`
	Email     string     `json:"email,omitempty"`
	Address   string     `json:"address,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Locations []Location `json:"locations"`
}

// OrganizationInput is the body accepted by create and update.
type OrganizationInput struct {
	Name    string `json:"name" validate:"required,max=255"`
	Type    string `json:"type" validate:"required,oneof=HOSPITAL CLINIC LABORATORY PHARMACY INSURER OTHER"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
	Email   string `json:"email" validate:"omitempty,email,max=255"`
	Address string `json:"address"`
}

// Location is the API shape of a location. Organization is null unless the
// location was loaded eagerly.
type Location struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Type           string        `json:"type"`
	Address        string        `json:"address,omitempty"`
	OrganizationID uuid.UUID     `json:"organization_id"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Organization   *Organization `json:"organization"`
}

// LocationInput is the body accepted by create and update.
type LocationInput struct {
	Name           string    `json:"name" validate:"required,max=255"`
	Type           string    `json:"type" validate:"required,oneof=BUILDING WARD ROOM OFFICE LABORATORY PHARMACY"`
	Address        string    `json:"address"`
	OrganizationID uuid.UUID `json:"organization_id" validate:"required"`
}
