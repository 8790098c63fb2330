package dto

import (
	"time"

	"github.com/google/uuid"
)

// Patient is the API shape of a patient. The nested record lists are null
// for lazy reads and always present, possibly empty, for eager reads.
type Patient struct {
	ID           uuid.UUID     `json:"id"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Email        string        `json:"email"`
	BirthDate    string        `json:"birth_date,omitempty"`
	Gender       string        `json:"gender,omitempty"`
	Phone        string        `json:"phone,omitempty"`
	Address      string        `json:"address,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
	Conditions   []Condition   `json:"conditions"`
	Encounters   []Encounter   `json:"encounters"`
	Observations []Observation `json:"observations"`
}

// PatientInput is the body accepted by patient create.
type PatientInput struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=255"`
	BirthDate string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender    string `json:"gender" validate:"omitempty,oneof=male female other unknown"`
	Phone     string `json:"phone" validate:"omitempty,max=50"`
	Address   string `json:"address"`
}

// PatientSummary identifies a patient inside another record.
type PatientSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
}

type Practitioner struct {
	ID             uuid.UUID  `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Role           string     `json:"role"`
	Specialty      string     `json:"specialty,omitempty"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// PractitionerInput is the body accepted by practitioner create.
type PractitionerInput struct {
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	Email          string     `json:"email" validate:"required,email,max=255"`
	Role           string     `json:"role" validate:"required,oneof=Doctor OtherStaff"`
	Specialty      string     `json:"specialty" validate:"omitempty,max=100"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

// PractitionerSummary identifies a practitioner inside another record.
type PractitionerSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}
