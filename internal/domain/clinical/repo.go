package clinical

import (
	"context"

	"github.com/google/uuid"
)

// ConditionRepository defines the persistence interface for conditions.
// Lists are ordered most recently diagnosed first.
type ConditionRepository interface {
	Create(ctx context.Context, c *Condition) error
	GetByID(ctx context.Context, id uuid.UUID) (*Condition, error)
	Update(ctx context.Context, c *Condition) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Condition, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Condition, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*Condition, error)
	ListBySeverityAbove(ctx context.Context, threshold int) ([]*Condition, error)
	ListByType(ctx context.Context, t ConditionType) ([]*Condition, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
}

// ObservationRepository defines the persistence interface for observations.
// Lists are ordered most recently recorded first, ties by id descending.
type ObservationRepository interface {
	Create(ctx context.Context, o *Observation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Observation, error)
	Update(ctx context.Context, o *Observation) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Observation, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Observation, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*Observation, error)
	MostRecentByPatient(ctx context.Context, patientID uuid.UUID) (*Observation, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
}
