package encounter

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for encounters. Lists are
// ordered most recent first, ties by id descending.
type Repository interface {
	Create(ctx context.Context, e *Encounter) error
	GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error)
	Update(ctx context.Context, e *Encounter) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error)
	ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Encounter, error)
	ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*Encounter, error)
	ListSince(ctx context.Context, since time.Time) ([]*Encounter, error)
	CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
}
