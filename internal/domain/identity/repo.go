package identity

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository defines the persistence interface for patients.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByEmail(ctx context.Context, email string) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Patient, error)
	SearchByName(ctx context.Context, term string, limit, offset int) ([]*Patient, error)
	Count(ctx context.Context) (int64, error)
}

// PractitionerRepository defines the persistence interface for practitioners.
type PractitionerRepository interface {
	Create(ctx context.Context, p *Practitioner) error
	GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)
	List(ctx context.Context, limit, offset int) ([]*Practitioner, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Practitioner, error)
	Count(ctx context.Context) (int64, error)
}
