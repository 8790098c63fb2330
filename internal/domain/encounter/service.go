package encounter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// DefaultRecentWindow bounds the "recent encounters" query.
const DefaultRecentWindow = 30 * 24 * time.Hour

// Directory resolves the patients and practitioners an encounter points at.
type Directory interface {
	RequirePatient(ctx context.Context, id uuid.UUID) error
	RequirePractitioner(ctx context.Context, id uuid.UUID) error
	PatientSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PatientSummary, error)
	PractitionerSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PractitionerSummary, error)
}

// Locations reports whether a location exists.
type Locations interface {
	LocationExists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Option func(*Service)

// WithRecentWindow overrides DefaultRecentWindow.
func WithRecentWindow(d time.Duration) Option {
	return func(s *Service) { s.recent = d }
}

type Service struct {
	repo      Repository
	dir       Directory
	locations Locations

	recent time.Duration
	now    func() time.Time
}

func NewService(repo Repository, dir Directory, locations Locations, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		dir:       dir,
		locations: locations,
		recent:    DefaultRecentWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, eager bool) ([]dto.Encounter, error) {
	list, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, list, eager)
}

func (s *Service) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID, eager bool) ([]dto.Encounter, error) {
	list, err := s.repo.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, list, eager)
}

// ListRecent returns the encounters that occurred within the recent window,
// newest first.
func (s *Service) ListRecent(ctx context.Context, eager bool) ([]dto.Encounter, error) {
	list, err := s.repo.ListSince(ctx, s.now().Add(-s.recent))
	if err != nil {
		return nil, err
	}
	return s.toDTOs(ctx, list, eager)
}

func (s *Service) GetEncounter(ctx context.Context, id uuid.UUID) (*dto.Encounter, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := e.ToDTO(nil, nil)
	return &out, nil
}

func (s *Service) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return s.repo.CountByPatient(ctx, patientID)
}

func (s *Service) CreateEncounter(ctx context.Context, patientID, practitionerID uuid.UUID, in dto.EncounterInput) (*dto.Encounter, error) {
	if in.Reason == "" {
		return nil, errs.InvalidArgumentf("reason is required")
	}
	e := Encounter{PatientID: patientID, PractitionerID: practitionerID}
	e.apply(in, s.now())

	if err := s.dir.RequirePatient(ctx, patientID); err != nil {
		return nil, err
	}
	if err := s.dir.RequirePractitioner(ctx, practitionerID); err != nil {
		return nil, err
	}
	if err := s.requireLocation(ctx, e.LocationID); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &e); err != nil {
		return nil, err
	}
	out := e.ToDTO(nil, nil)
	return &out, nil
}

func (s *Service) UpdateEncounter(ctx context.Context, id uuid.UUID, in dto.EncounterInput) (*dto.Encounter, error) {
	if in.Reason == "" {
		return nil, errs.InvalidArgumentf("reason is required")
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.OccurredAt == nil {
		in.OccurredAt = &e.OccurredAt
	}
	e.apply(in, s.now())
	if err := s.requireLocation(ctx, e.LocationID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	out := e.ToDTO(nil, nil)
	return &out, nil
}

// DeleteEncounter reports whether the encounter existed.
func (s *Service) DeleteEncounter(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Delete(ctx, id)
}

// EncountersByPatients groups the encounters of patientIDs by patient.
func (s *Service) EncountersByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]dto.Encounter, error) {
	list, err := s.repo.ListByPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]dto.Encounter, len(patientIDs))
	for _, e := range list {
		out[e.PatientID] = append(out[e.PatientID], e.ToDTO(nil, nil))
	}
	return out, nil
}

func (s *Service) requireLocation(ctx context.Context, id *uuid.UUID) error {
	if id == nil || s.locations == nil {
		return nil
	}
	ok, err := s.locations.LocationExists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NotFoundf("Location not found")
	}
	return nil
}

func (s *Service) toDTOs(ctx context.Context, list []*Encounter, eager bool) ([]dto.Encounter, error) {
	out := make([]dto.Encounter, 0, len(list))
	if !eager {
		for _, e := range list {
			out = append(out, e.ToDTO(nil, nil))
		}
		return out, nil
	}

	patientIDs := make([]uuid.UUID, 0, len(list))
	practitionerIDs := make([]uuid.UUID, 0, len(list))
	for _, e := range list {
		patientIDs = append(patientIDs, e.PatientID)
		practitionerIDs = append(practitionerIDs, e.PractitionerID)
	}
	patients, err := s.dir.PatientSummaries(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	practitioners, err := s.dir.PractitionerSummaries(ctx, practitionerIDs)
	if err != nil {
		return nil, err
	}
	for _, e := range list {
		var pat *dto.PatientSummary
		if p, ok := patients[e.PatientID]; ok {
			pat = &p
		}
		var prac *dto.PractitionerSummary
		if p, ok := practitioners[e.PractitionerID]; ok {
			prac = &p
		}
		out = append(out, e.ToDTO(pat, prac))
	}
	return out, nil
}
