package dto

import (
	"time"

	"github.com/google/uuid"
)

// Condition is the API shape of a diagnosed condition. Patient and
// Practitioner are only set on eager reads.
type Condition struct {
	ID             uuid.UUID            `json:"id"`
	PatientID      uuid.UUID            `json:"patient_id"`
	PractitionerID uuid.UUID            `json:"practitioner_id"`
	Name           string               `json:"name"`
	Type           string               `json:"type"`
	Severity       int                  `json:"severity"`
	Description    string               `json:"description,omitempty"`
	DiagnosedAt    time.Time            `json:"diagnosed_at"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Patient        *PatientSummary      `json:"patient,omitempty"`
	Practitioner   *PractitionerSummary `json:"practitioner,omitempty"`
}

// ConditionInput is the body accepted by condition create and update.
// DiagnosedAt defaults to the time of the request.
type ConditionInput struct {
	Name        string     `json:"name" validate:"required,max=255"`
	Type        string     `json:"type" validate:"required,oneof=ACUTE CHRONIC INFECTIOUS GENETIC MENTAL INJURY OTHER"`
	Severity    int        `json:"severity" validate:"required,gte=1,lte=10"`
	Description string     `json:"description"`
	DiagnosedAt *time.Time `json:"diagnosed_at"`
}

type Encounter struct {
	ID             uuid.UUID            `json:"id"`
	PatientID      uuid.UUID            `json:"patient_id"`
	PractitionerID uuid.UUID            `json:"practitioner_id"`
	LocationID     *uuid.UUID           `json:"location_id,omitempty"`
	Reason         string               `json:"reason"`
	Notes          string               `json:"notes,omitempty"`
	OccurredAt     time.Time            `json:"occurred_at"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	Patient        *PatientSummary      `json:"patient,omitempty"`
	Practitioner   *PractitionerSummary `json:"practitioner,omitempty"`
}

// EncounterInput is the body accepted by encounter create and update.
// OccurredAt defaults to the time of the request.
type EncounterInput struct {
	LocationID *uuid.UUID `json:"location_id"`
	Reason     string     `json:"reason" validate:"required,max=255"`
	Notes      string     `json:"notes"`
	OccurredAt *time.Time `json:"occurred_at"`
}

type Observation struct {
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient_id"`
	PractitionerID uuid.UUID `json:"practitioner_id"`
	Code           string    `json:"code"`
	Value          string    `json:"value"`
	Unit           string    `json:"unit,omitempty"`
	Note           string    `json:"note,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ObservationInput is the body accepted by observation create and update.
// RecordedAt defaults to the time of the request.
type ObservationInput struct {
	Code       string     `json:"code" validate:"required,max=100"`
	Value      string     `json:"value" validate:"required,max=255"`
	Unit       string     `json:"unit" validate:"omitempty,max=50"`
	Note       string     `json:"note"`
	RecordedAt *time.Time `json:"recorded_at"`
}
