package encounter

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
)

// Encounter maps to the encounter table.
type Encounter struct {
	ID             uuid.UUID  `db:"id"`
	PatientID      uuid.UUID  `db:"patient_id"`
	PractitionerID uuid.UUID  `db:"practitioner_id"`
	LocationID     *uuid.UUID `db:"location_id"`
	Reason         string     `db:"reason"`
	Notes          *string    `db:"notes"`
	OccurredAt     time.Time  `db:"occurred_at"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
}

// ToDTO maps the encounter, nesting the summaries that are non-nil.
func (e *Encounter) ToDTO(patient *dto.PatientSummary, practitioner *dto.PractitionerSummary) dto.Encounter {
	out := dto.Encounter{
		ID:             e.ID,
		PatientID:      e.PatientID,
		PractitionerID: e.PractitionerID,
		LocationID:     e.LocationID,
		Reason:         e.Reason,
		OccurredAt:     e.OccurredAt,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		Patient:        patient,
		Practitioner:   practitioner,
	}
	if e.Notes != nil {
		out.Notes = *e.Notes
	}
	return out
}

func (e *Encounter) apply(in dto.EncounterInput, now time.Time) {
	e.Reason = in.Reason
	e.Notes = nil
	if in.Notes != "" {
		notes := in.Notes
		e.Notes = &notes
	}
	e.LocationID = nil
	if in.LocationID != nil && *in.LocationID != uuid.Nil {
		loc := *in.LocationID
		e.LocationID = &loc
	}
	at := now
	if in.OccurredAt != nil {
		at = *in.OccurredAt
	}
	// TIMESTAMPTZ keeps microseconds.
	e.OccurredAt = at.UTC().Truncate(time.Microsecond)
}
