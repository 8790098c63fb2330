package admin

import (
	"context"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
	"github.com/ehr/patient-journal/pkg/pagination"
)

type Service struct {
	orgs OrganizationRepository
	locs LocationRepository
}

func NewService(orgs OrganizationRepository, locs LocationRepository) *Service {
	return &Service{orgs: orgs, locs: locs}
}

// -- Organization --

func (s *Service) ListOrganizations(ctx context.Context, p pagination.Params) ([]dto.Organization, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	orgs, err := s.orgs.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.Organization, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, o.ToDTO(false, nil))
	}
	return out, nil
}

func (s *Service) GetOrganization(ctx context.Context, id uuid.UUID, eager bool) (*dto.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var locs []*Location
	if eager {
		if locs, err = s.locs.ListByOrganization(ctx, id); err != nil {
			return nil, err
		}
	}
	out := org.ToDTO(eager, locs)
	return &out, nil
}

func (s *Service) ListOrganizationsByType(ctx context.Context, rawType string) ([]dto.Organization, error) {
	t, err := ParseOrganizationType(rawType)
	if err != nil {
		return nil, err
	}
	orgs, err := s.orgs.ListByType(ctx, t)
	if err != nil {
		return nil, err
	}
	out := make([]dto.Organization, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, o.ToDTO(false, nil))
	}
	return out, nil
}

func (s *Service) CountOrganizations(ctx context.Context) (int64, error) {
	return s.orgs.Count(ctx)
}

func (s *Service) CreateOrganization(ctx context.Context, in dto.OrganizationInput) (*dto.Organization, error) {
	if _, err := ParseOrganizationType(in.Type); err != nil {
		return nil, err
	}
	var org Organization
	org.apply(in)
	if err := s.orgs.Create(ctx, &org); err != nil {
		return nil, err
	}
	out := org.ToDTO(false, nil)
	return &out, nil
}

func (s *Service) UpdateOrganization(ctx context.Context, id uuid.UUID, in dto.OrganizationInput) (*dto.Organization, error) {
	if _, err := ParseOrganizationType(in.Type); err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	org.apply(in)
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, err
	}
	out := org.ToDTO(false, nil)
	return &out, nil
}

// -- Location --

func (s *Service) ListLocations(ctx context.Context, p pagination.Params) ([]dto.Location, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	locs, err := s.locs.List(ctx, p.Limit(), p.Offset())
	if err != nil {
		return nil, err
	}
	return locationDTOs(locs), nil
}

func (s *Service) GetLocation(ctx context.Context, id uuid.UUID, eager bool) (*dto.Location, error) {
	loc, err := s.locs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var org *Organization
	if eager {
		if org, err = s.orgs.GetByID(ctx, loc.OrganizationID); err != nil {
			return nil, err
		}
	}
	out := loc.ToDTO(org)
	return &out, nil
}

// LocationExists reports whether a location with id is stored.
func (s *Service) LocationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.locs.GetByID(ctx, id)
	if errs.Is(err, errs.NotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) ListLocationsByType(ctx context.Context, rawType string) ([]dto.Location, error) {
	t, err := ParseLocationType(rawType)
	if err != nil {
		return nil, err
	}
	locs, err := s.locs.ListByType(ctx, t)
	if err != nil {
		return nil, err
	}
	return locationDTOs(locs), nil
}

func (s *Service) CountLocations(ctx context.Context) (int64, error) {
	return s.locs.Count(ctx)
}

func (s *Service) CreateLocation(ctx context.Context, in dto.LocationInput) (*dto.Location, error) {
	if _, err := ParseLocationType(in.Type); err != nil {
		return nil, err
	}
	if err := s.requireOrganization(ctx, in.OrganizationID); err != nil {
		return nil, err
	}
	var loc Location
	loc.apply(in)
	if err := s.locs.Create(ctx, &loc); err != nil {
		return nil, err
	}
	out := loc.ToDTO(nil)
	return &out, nil
}

func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, in dto.LocationInput) (*dto.Location, error) {
	if _, err := ParseLocationType(in.Type); err != nil {
		return nil, err
	}
	loc, err := s.locs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.OrganizationID != loc.OrganizationID {
		if err := s.requireOrganization(ctx, in.OrganizationID); err != nil {
			return nil, err
		}
	}
	loc.apply(in)
	if err := s.locs.Update(ctx, loc); err != nil {
		return nil, err
	}
	out := loc.ToDTO(nil)
	return &out, nil
}

// DeleteLocation reports whether the location existed.
func (s *Service) DeleteLocation(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.locs.Delete(ctx, id)
}

func (s *Service) requireOrganization(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.InvalidArgumentf("organization_id is required")
	}
	_, err := s.orgs.GetByID(ctx, id)
	return err
}

func locationDTOs(locs []*Location) []dto.Location {
	out := make([]dto.Location, 0, len(locs))
	for _, l := range locs {
		out = append(out, l.ToDTO(nil))
	}
	return out
}
