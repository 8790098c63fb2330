package clinical

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// ConditionType classifies a diagnosed condition.
type ConditionType string

const (
	ConditionAcute      ConditionType = "ACUTE"
	ConditionChronic    ConditionType = "CHRONIC"
	ConditionInfectious ConditionType = "INFECTIOUS"
	ConditionGenetic    ConditionType = "GENETIC"
	ConditionMental     ConditionType = "MENTAL"
	ConditionInjury     ConditionType = "INJURY"
	ConditionOther      ConditionType = "OTHER"
)

func ParseConditionType(s string) (ConditionType, error) {
	switch t := ConditionType(s); t {
	case ConditionAcute, ConditionChronic, ConditionInfectious, ConditionGenetic,
		ConditionMental, ConditionInjury, ConditionOther:
		return t, nil
	}
	return "", errs.InvalidArgumentf("unknown condition type %q", s)
}

const (
	MinSeverity = 1
	MaxSeverity = 10
)

// Condition maps to the condition table.
type Condition struct {
	ID             uuid.UUID     `db:"id"`
	PatientID      uuid.UUID     `db:"patient_id"`
	PractitionerID uuid.UUID     `db:"practitioner_id"`
	Name           string        `db:"name"`
	Type           ConditionType `db:"type"`
	Severity       int           `db:"severity"`
	Description    *string       `db:"description"`
	DiagnosedAt    time.Time     `db:"diagnosed_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

// Observation maps to the observation table.
type Observation struct {
	ID             uuid.UUID `db:"id"`
	PatientID      uuid.UUID `db:"patient_id"`
	PractitionerID uuid.UUID `db:"practitioner_id"`
	Code           string    `db:"code"`
	Value          string    `db:"value"`
	Unit           *string   `db:"unit"`
	Note           *string   `db:"note"`
	RecordedAt     time.Time `db:"recorded_at"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// ToDTO maps the condition, nesting the summaries that are non-nil.
func (c *Condition) ToDTO(patient *dto.PatientSummary, practitioner *dto.PractitionerSummary) dto.Condition {
	return dto.Condition{
		ID:             c.ID,
		PatientID:      c.PatientID,
		PractitionerID: c.PractitionerID,
		Name:           c.Name,
		Type:           string(c.Type),
		Severity:       c.Severity,
		Description:    deref(c.Description),
		DiagnosedAt:    c.DiagnosedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		Patient:        patient,
		Practitioner:   practitioner,
	}
}

func (o *Observation) ToDTO() dto.Observation {
	return dto.Observation{
		ID:             o.ID,
		PatientID:      o.PatientID,
		PractitionerID: o.PractitionerID,
		Code:           o.Code,
		Value:          o.Value,
		Unit:           deref(o.Unit),
		Note:           deref(o.Note),
		RecordedAt:     o.RecordedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
