package admin

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines the persistence interface for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	Update(ctx context.Context, org *Organization) error
	List(ctx context.Context, limit, offset int) ([]*Organization, error)
	ListByType(ctx context.Context, t OrganizationType) ([]*Organization, error)
	Count(ctx context.Context) (int64, error)
}

// LocationRepository defines the persistence interface for locations.
type LocationRepository interface {
	Create(ctx context.Context, loc *Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	Update(ctx context.Context, loc *Location) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*Location, error)
	ListByType(ctx context.Context, t LocationType) ([]*Location, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Location, error)
	Count(ctx context.Context) (int64, error)
}
