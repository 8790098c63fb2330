package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
	"github.com/ehr/patient-journal/pkg/pagination"
)

// ConditionSource loads the conditions of several patients at once, keyed
// by patient id, in the same order the per-patient listing uses.
type ConditionSource interface {
	ConditionsByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]dto.Condition, error)
}

// EncounterSource loads the encounters of several patients at once.
type EncounterSource interface {
	EncountersByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]dto.Encounter, error)
}

// ObservationSource loads the observations of several patients at once.
type ObservationSource interface {
	ObservationsByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]dto.Observation, error)
}

type Service struct {
	patients      PatientRepository
	practitioners PractitionerRepository

	conditions   ConditionSource
	encounters   EncounterSource
	observations ObservationSource
}

func NewService(patients PatientRepository, practitioners PractitionerRepository) *Service {
	return &Service{patients: patients, practitioners: practitioners}
}

// SetRecordSources attaches the loaders used for eager patient reads.
// Unset sources contribute empty lists.
func (s *Service) SetRecordSources(c ConditionSource, e EncounterSource, o ObservationSource) {
	s.conditions = c
	s.encounters = e
	s.observations = o
}

// -- Patient --

func (s *Service) ListPatients(ctx context.Context, p pagination.Params, eager bool) ([]dto.Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	patients, err := s.patients.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return s.patientDTOs(ctx, patients, eager)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID, eager bool) (*dto.Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.patientDTOs(ctx, []*Patient{p}, eager)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// GetPatientByEmail returns nil without error when no patient has email.
func (s *Service) GetPatientByEmail(ctx context.Context, email string, eager bool) (*dto.Patient, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errs.InvalidArgumentf("email cannot be empty")
	}
	p, err := s.patients.GetByEmail(ctx, email)
	if errs.Is(err, errs.NotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out, err := s.patientDTOs(ctx, []*Patient{p}, eager)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (s *Service) SearchPatients(ctx context.Context, term string, p pagination.Params, eager bool) ([]dto.Patient, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errs.InvalidArgumentf("search term cannot be empty")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	patients, err := s.patients.SearchByName(ctx, term, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return s.patientDTOs(ctx, patients, eager)
}

func (s *Service) CountPatients(ctx context.Context) (int64, error) {
	return s.patients.Count(ctx)
}

func (s *Service) CreatePatient(ctx context.Context, in dto.PatientInput) (*dto.Patient, error) {
	p := Patient{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     normalizeEmail(in.Email),
		Gender:    optional(in.Gender),
		Phone:     optional(in.Phone),
		Address:   optional(in.Address),
	}
	if p.FirstName == "" || p.LastName == "" {
		return nil, errs.InvalidArgumentf("first_name and last_name are required")
	}
	if p.Email == "" {
		return nil, errs.InvalidArgumentf("email is required")
	}
	if in.BirthDate != "" {
		bd, err := time.Parse(birthDateLayout, in.BirthDate)
		if err != nil {
			return nil, errs.InvalidArgumentf("birth_date must be formatted as YYYY-MM-DD")
		}
		p.BirthDate = &bd
	}
	if err := s.patients.Create(ctx, &p); err != nil {
		return nil, err
	}
	out := p.ToDTO(nil)
	return &out, nil
}

// RequirePatient returns a NotFound error unless the patient exists.
func (s *Service) RequirePatient(ctx context.Context, id uuid.UUID) error {
	_, err := s.patients.GetByID(ctx, id)
	return err
}

// PatientSummaries resolves ids to summaries. Unknown ids are left out.
func (s *Service) PatientSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PatientSummary, error) {
	patients, err := s.patients.ListByIDs(ctx, unique(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]dto.PatientSummary, len(patients))
	for _, p := range patients {
		out[p.ID] = p.Summary()
	}
	return out, nil
}

func (s *Service) patientDTOs(ctx context.Context, patients []*Patient, eager bool) ([]dto.Patient, error) {
	out := make([]dto.Patient, 0, len(patients))
	if !eager {
		for _, p := range patients {
			out = append(out, p.ToDTO(nil))
		}
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(patients))
	for _, p := range patients {
		ids = append(ids, p.ID)
	}

	var (
		conds map[uuid.UUID][]dto.Condition
		encs  map[uuid.UUID][]dto.Encounter
		obs   map[uuid.UUID][]dto.Observation
		err   error
	)
	if s.conditions != nil && len(ids) > 0 {
		if conds, err = s.conditions.ConditionsByPatients(ctx, ids); err != nil {
			return nil, err
		}
	}
	if s.encounters != nil && len(ids) > 0 {
		if encs, err = s.encounters.EncountersByPatients(ctx, ids); err != nil {
			return nil, err
		}
	}
	if s.observations != nil && len(ids) > 0 {
		if obs, err = s.observations.ObservationsByPatients(ctx, ids); err != nil {
			return nil, err
		}
	}

	for _, p := range patients {
		out = append(out, p.ToDTO(&Records{
			Conditions:   conds[p.ID],
			Encounters:   encs[p.ID],
			Observations: obs[p.ID],
		}))
	}
	return out, nil
}

// -- Practitioner --

func (s *Service) ListPractitioners(ctx context.Context, p pagination.Params) ([]dto.Practitioner, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	list, err := s.practitioners.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.Practitioner, 0, len(list))
	for _, pr := range list {
		out = append(out, pr.ToDTO())
	}
	return out, nil
}

func (s *Service) GetPractitioner(ctx context.Context, id uuid.UUID) (*dto.Practitioner, error) {
	pr, err := s.practitioners.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := pr.ToDTO()
	return &out, nil
}

func (s *Service) CountPractitioners(ctx context.Context) (int64, error) {
	return s.practitioners.Count(ctx)
}

func (s *Service) CreatePractitioner(ctx context.Context, in dto.PractitionerInput) (*dto.Practitioner, error) {
	role, err := ParsePractitionerRole(in.Role)
	if err != nil {
		return nil, err
	}
	pr := Practitioner{
		FirstName:      strings.TrimSpace(in.FirstName),
		LastName:       strings.TrimSpace(in.LastName),
		Email:          normalizeEmail(in.Email),
		Role:           role,
		Specialty:      optional(in.Specialty),
		OrganizationID: in.OrganizationID,
	}
	if pr.FirstName == "" || pr.LastName == "" {
		return nil, errs.InvalidArgumentf("first_name and last_name are required")
	}
	if pr.Email == "" {
		return nil, errs.InvalidArgumentf("email is required")
	}
	if err := s.practitioners.Create(ctx, &pr); err != nil {
		return nil, err
	}
	out := pr.ToDTO()
	return &out, nil
}

// RequirePractitioner returns a NotFound error unless the practitioner exists.
func (s *Service) RequirePractitioner(ctx context.Context, id uuid.UUID) error {
	_, err := s.practitioners.GetByID(ctx, id)
	return err
}

// PractitionerSummaries resolves ids to summaries. Unknown ids are left out.
func (s *Service) PractitionerSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PractitionerSummary, error) {
	list, err := s.practitioners.ListByIDs(ctx, unique(ids))
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]dto.PractitionerSummary, len(list))
	for _, pr := range list {
		out[pr.ID] = pr.Summary()
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
