package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

const birthDateLayout = "2006-01-02"

// PractitionerRole is the staff role a practitioner is registered with.
type PractitionerRole string

const (
	RoleDoctor     PractitionerRole = "Doctor"
	RoleOtherStaff PractitionerRole = "OtherStaff"
)

func ParsePractitionerRole(s string) (PractitionerRole, error) {
	switch r := PractitionerRole(s); r {
	case RoleDoctor, RoleOtherStaff:
		return r, nil
	}
	return "", errs.InvalidArgumentf("unknown practitioner role %q", s)
}

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID  `db:"id"`
	FirstName string     `db:"first_name"`
	LastName  string     `db:"last_name"`
	Email     string     `db:"email"`
	BirthDate *time.Time `db:"birth_date"`
	Gender    *string    `db:"gender"`
	Phone     *string    `db:"phone"`
	Address   *string    `db:"address"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
}

// Practitioner maps to the practitioner table.
type Practitioner struct {
	ID             uuid.UUID        `db:"id"`
	FirstName      string           `db:"first_name"`
	LastName       string           `db:"last_name"`
	Email          string           `db:"email"`
	Role           PractitionerRole `db:"role"`
	Specialty      *string          `db:"specialty"`
	OrganizationID *uuid.UUID       `db:"organization_id"`
	CreatedAt      time.Time        `db:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at"`
}

// Records holds the clinical records nested into an eagerly loaded patient.
type Records struct {
	Conditions   []dto.Condition
	Encounters   []dto.Encounter
	Observations []dto.Observation
}

// ToDTO maps the patient. A nil rec yields a lazy DTO; otherwise every
// nested list is present, empty when the patient has no records.
func (p *Patient) ToDTO(rec *Records) dto.Patient {
	out := dto.Patient{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Gender:    deref(p.Gender),
		Phone:     deref(p.Phone),
		Address:   deref(p.Address),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.BirthDate != nil {
		out.BirthDate = p.BirthDate.Format(birthDateLayout)
	}
	if rec != nil {
		out.Conditions = nonNil(rec.Conditions)
		out.Encounters = nonNil(rec.Encounters)
		out.Observations = nonNil(rec.Observations)
	}
	return out
}

func (p *Patient) Summary() dto.PatientSummary {
	return dto.PatientSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
}

func (p *Practitioner) ToDTO() dto.Practitioner {
	return dto.Practitioner{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Role:           string(p.Role),
		Specialty:      deref(p.Specialty),
		OrganizationID: p.OrganizationID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (p *Practitioner) Summary() dto.PractitionerSummary {
	return dto.PractitionerSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Role: string(p.Role)}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
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
