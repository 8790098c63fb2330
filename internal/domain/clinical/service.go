package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// DefaultHighSeverityThreshold is the severity a condition must exceed to be
// reported as high severity.
const DefaultHighSeverityThreshold = 7

// Directory resolves the patients and practitioners clinical records point at.
type Directory interface {
	RequirePatient(ctx context.Context, id uuid.UUID) error
	RequirePractitioner(ctx context.Context, id uuid.UUID) error
	PatientSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PatientSummary, error)
	PractitionerSummaries(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]dto.PractitionerSummary, error)
}

type Option func(*Service)

// WithHighSeverityThreshold overrides DefaultHighSeverityThreshold.
func WithHighSeverityThreshold(n int) Option {
	return func(s *Service) { s.highSeverity = n }
}

type Service struct {
	conditions   ConditionRepository
	observations ObservationRepository
	dir          Directory

	highSeverity int
	now          func() time.Time
}

func NewService(conditions ConditionRepository, observations ObservationRepository, dir Directory, opts ...Option) *Service {
	s := &Service{
		conditions:   conditions,
		observations: observations,
		dir:          dir,
		highSeverity: DefaultHighSeverityThreshold,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// -- Condition --

func (s *Service) ListConditionsByPatient(ctx context.Context, patientID uuid.UUID, eager bool) ([]dto.Condition, error) {
	list, err := s.conditions.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return s.conditionDTOs(ctx, list, eager)
}

func (s *Service) ListConditionsByPractitioner(ctx context.Context, practitionerID uuid.UUID, eager bool) ([]dto.Condition, error) {
	list, err := s.conditions.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	return s.conditionDTOs(ctx, list, eager)
}

func (s *Service) GetCondition(ctx context.Context, id uuid.UUID) (*dto.Condition, error) {
	c, err := s.conditions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := c.ToDTO(nil, nil)
	return &out, nil
}

// ListHighSeverityConditions returns every condition whose severity exceeds
// the configured threshold, across all patients.
func (s *Service) ListHighSeverityConditions(ctx context.Context) ([]dto.Condition, error) {
	list, err := s.conditions.ListBySeverityAbove(ctx, s.highSeverity)
	if err != nil {
		return nil, err
	}
	return s.conditionDTOs(ctx, list, false)
}

func (s *Service) ListConditionsByType(ctx context.Context, rawType string) ([]dto.Condition, error) {
	t, err := ParseConditionType(rawType)
	if err != nil {
		return nil, err
	}
	list, err := s.conditions.ListByType(ctx, t)
	if err != nil {
		return nil, err
	}
	return s.conditionDTOs(ctx, list, false)
}

func (s *Service) CountConditionsByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return s.conditions.CountByPatient(ctx, patientID)
}

func (s *Service) CreateCondition(ctx context.Context, patientID, practitionerID uuid.UUID, in dto.ConditionInput) (*dto.Condition, error) {
	c := Condition{PatientID: patientID, PractitionerID: practitionerID}
	if err := s.applyCondition(&c, in); err != nil {
		return nil, err
	}
	if err := s.requireOwners(ctx, patientID, practitionerID); err != nil {
		return nil, err
	}
	if err := s.conditions.Create(ctx, &c); err != nil {
		return nil, err
	}
	out := c.ToDTO(nil, nil)
	return &out, nil
}

func (s *Service) UpdateCondition(ctx context.Context, id uuid.UUID, in dto.ConditionInput) (*dto.Condition, error) {
	c, err := s.conditions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.DiagnosedAt == nil {
		in.DiagnosedAt = &c.DiagnosedAt
	}
	if err := s.applyCondition(c, in); err != nil {
		return nil, err
	}
	if err := s.conditions.Update(ctx, c); err != nil {
		return nil, err
	}
	out := c.ToDTO(nil, nil)
	return &out, nil
}

// DeleteCondition reports whether the condition existed.
func (s *Service) DeleteCondition(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.conditions.Delete(ctx, id)
}

// ConditionsByPatients groups the conditions of patientIDs by patient.
func (s *Service) ConditionsByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]dto.Condition, error) {
	list, err := s.conditions.ListByPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]dto.Condition, len(patientIDs))
	for _, c := range list {
		out[c.PatientID] = append(out[c.PatientID], c.ToDTO(nil, nil))
	}
	return out, nil
}

func (s *Service) applyCondition(c *Condition, in dto.ConditionInput) error {
	t, err := ParseConditionType(in.Type)
	if err != nil {
		return err
	}
	if in.Severity < MinSeverity || in.Severity > MaxSeverity {
		return errs.InvalidArgumentf("severity must be between %d and %d", MinSeverity, MaxSeverity)
	}
	c.Name = in.Name
	c.Type = t
	c.Severity = in.Severity
	c.Description = optional(in.Description)
	c.DiagnosedAt = s.timestamp(in.DiagnosedAt)
	return nil
}

func (s *Service) conditionDTOs(ctx context.Context, list []*Condition, eager bool) ([]dto.Condition, error) {
	out := make([]dto.Condition, 0, len(list))
	if !eager {
		for _, c := range list {
			out = append(out, c.ToDTO(nil, nil))
		}
		return out, nil
	}

	patientIDs := make([]uuid.UUID, 0, len(list))
	practitionerIDs := make([]uuid.UUID, 0, len(list))
	for _, c := range list {
		patientIDs = append(patientIDs, c.PatientID)
		practitionerIDs = append(practitionerIDs, c.PractitionerID)
	}
	patients, practitioners, err := s.summaries(ctx, patientIDs, practitionerIDs)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		out = append(out, c.ToDTO(lookup(patients, c.PatientID), lookup(practitioners, c.PractitionerID)))
	}
	return out, nil
}

// -- Observation --

func (s *Service) ListObservationsByPatient(ctx context.Context, patientID uuid.UUID) ([]dto.Observation, error) {
	list, err := s.observations.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return observationDTOs(list), nil
}

func (s *Service) ListObservationsByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]dto.Observation, error) {
	list, err := s.observations.ListByPractitioner(ctx, practitionerID)
	if err != nil {
		return nil, err
	}
	return observationDTOs(list), nil
}

func (s *Service) GetObservation(ctx context.Context, id uuid.UUID) (*dto.Observation, error) {
	o, err := s.observations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := o.ToDTO()
	return &out, nil
}

// MostRecentObservation returns the patient's latest observation by
// recorded_at, ties broken by the greater id.
func (s *Service) MostRecentObservation(ctx context.Context, patientID uuid.UUID) (*dto.Observation, error) {
	o, err := s.observations.MostRecentByPatient(ctx, patientID)
	if errs.Is(err, errs.NotFound) {
		return nil, errs.NotFoundf("No observations found for patient")
	}
	if err != nil {
		return nil, err
	}
	out := o.ToDTO()
	return &out, nil
}

func (s *Service) CountObservationsByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return s.observations.CountByPatient(ctx, patientID)
}

func (s *Service) CreateObservation(ctx context.Context, patientID, practitionerID uuid.UUID, in dto.ObservationInput) (*dto.Observation, error) {
	o := Observation{PatientID: patientID, PractitionerID: practitionerID}
	if err := s.applyObservation(&o, in); err != nil {
		return nil, err
	}
	if err := s.requireOwners(ctx, patientID, practitionerID); err != nil {
		return nil, err
	}
	if err := s.observations.Create(ctx, &o); err != nil {
		return nil, err
	}
	out := o.ToDTO()
	return &out, nil
}

func (s *Service) UpdateObservation(ctx context.Context, id uuid.UUID, in dto.ObservationInput) (*dto.Observation, error) {
	o, err := s.observations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.RecordedAt == nil {
		in.RecordedAt = &o.RecordedAt
	}
	if err := s.applyObservation(o, in); err != nil {
		return nil, err
	}
	if err := s.observations.Update(ctx, o); err != nil {
		return nil, err
	}
	out := o.ToDTO()
	return &out, nil
}

// DeleteObservation reports whether the observation existed.
func (s *Service) DeleteObservation(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.observations.Delete(ctx, id)
}

// ObservationsByPatients groups the observations of patientIDs by patient.
func (s *Service) ObservationsByPatients(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]dto.Observation, error) {
	list, err := s.observations.ListByPatients(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]dto.Observation, len(patientIDs))
	for _, o := range list {
		out[o.PatientID] = append(out[o.PatientID], o.ToDTO())
	}
	return out, nil
}

func (s *Service) applyObservation(o *Observation, in dto.ObservationInput) error {
	if in.Code == "" || in.Value == "" {
		return errs.InvalidArgumentf("code and value are required")
	}
	o.Code = in.Code
	o.Value = in.Value
	o.Unit = optional(in.Unit)
	o.Note = optional(in.Note)
	o.RecordedAt = s.timestamp(in.RecordedAt)
	return nil
}

// timestamp returns t, or now when t is nil, at the microsecond precision
// Postgres stores.
func (s *Service) timestamp(t *time.Time) time.Time {
	ts := s.now()
	if t != nil {
		ts = *t
	}
	return ts.UTC().Truncate(time.Microsecond)
}

func observationDTOs(list []*Observation) []dto.Observation {
	out := make([]dto.Observation, 0, len(list))
	for _, o := range list {
		out = append(out, o.ToDTO())
	}
	return out
}

// -- Shared --

func (s *Service) requireOwners(ctx context.Context, patientID, practitionerID uuid.UUID) error {
	if err := s.dir.RequirePatient(ctx, patientID); err != nil {
		return err
	}
	return s.dir.RequirePractitioner(ctx, practitionerID)
}

func (s *Service) summaries(ctx context.Context, patientIDs, practitionerIDs []uuid.UUID) (map[uuid.UUID]dto.PatientSummary, map[uuid.UUID]dto.PractitionerSummary, error) {
	patients, err := s.dir.PatientSummaries(ctx, patientIDs)
	if err != nil {
		return nil, nil, err
	}
	practitioners, err := s.dir.PractitionerSummaries(ctx, practitionerIDs)
	if err != nil {
		return nil, nil, err
	}
	return patients, practitioners, nil
}

func lookup[T any](m map[uuid.UUID]T, id uuid.UUID) *T {
	v, ok := m[id]
	if !ok {
		return nil
	}
	return &v
}
