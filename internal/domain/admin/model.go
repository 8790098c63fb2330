package admin

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/patient-journal/internal/domain/dto"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// OrganizationType classifies an organization.
type OrganizationType string

const (
	OrgHospital   OrganizationType = "HOSPITAL"
	OrgClinic     OrganizationType = "CLINIC"
	OrgLaboratory OrganizationType = "LABORATORY"
	OrgPharmacy   OrganizationType = "PHARMACY"
	OrgInsurer    OrganizationType = "INSURER"
	OrgOther      OrganizationType = "OTHER"
)

func ParseOrganizationType(s string) (OrganizationType, error) {
	switch t := OrganizationType(s); t {
	case OrgHospital, OrgClinic, OrgLaboratory, OrgPharmacy, OrgInsurer, OrgOther:
		return t, nil
	}
	return "", errs.InvalidArgumentf("unknown organization type %q", s)
}

// LocationType classifies a location.
type LocationType string

const (
	LocBuilding   LocationType = "BUILDING"
	LocWard       LocationType = "WARD"
	LocRoom       LocationType = "ROOM"
	LocOffice     LocationType = "OFFICE"
	LocLaboratory LocationType = "LABORATORY"
	LocPharmacy   LocationType = "PHARMACY"
)

func ParseLocationType(s string) (LocationType, error) {
	switch t := LocationType(s); t {
	case LocBuilding, LocWard, LocRoom, LocOffice, LocLaboratory, LocPharmacy:
		return t, nil
	}
	return "", errs.InvalidArgumentf("unknown location type %q", s)
}

// Organization maps to the organization table.
type Organization struct {
	ID        uuid.UUID        `db:"id"`
	Name      string           `db:"name"`
	Type      OrganizationType `db:"type"`
	Phone     *string          `db:"phone"`
	Email     *string          `db:"email"`
	Address   *string          `db:"address"`
	CreatedAt time.Time        `db:"created_at"`
	UpdatedAt time.Time        `db:"updated_at"`
}

// Location maps to the location table.
type Location struct {
	ID             uuid.UUID    `db:"id"`
	Name           string       `db:"name"`
	Type           LocationType `db:"type"`
	Address        *string      `db:"address"`
	OrganizationID uuid.UUID    `db:"organization_id"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

// ToDTO maps the organization. With eager set, locs become the nested
// location list (empty, never null).
func (o *Organization) ToDTO(eager bool, locs []*Location) dto.Organization {
	out := dto.Organization{
		ID:        o.ID,
		Name:      o.Name,
		Type:      string(o.Type),
		Phone:     deref(o.Phone),
		Email:     deref(o.Email),
		Address:   deref(o.Address),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if eager {
		out.Locations = make([]dto.Location, 0, len(locs))
		for _, l := range locs {
			out.Locations = append(out.Locations, l.ToDTO(nil))
		}
	}
	return out
}

// ToDTO maps the location, nesting org when it is non-nil.
func (l *Location) ToDTO(org *Organization) dto.Location {
	out := dto.Location{
		ID:             l.ID,
		Name:           l.Name,
		Type:           string(l.Type),
		Address:        deref(l.Address),
		OrganizationID: l.OrganizationID,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
	if org != nil {
		o := org.ToDTO(false, nil)
		out.Organization = &o
	}
	return out
}

func (o *Organization) apply(in dto.OrganizationInput) {
	o.Name = in.Name
	o.Type = OrganizationType(in.Type)
	o.Phone = optional(in.Phone)
	o.Email = optional(in.Email)
	o.Address = optional(in.Address)
}

func (l *Location) apply(in dto.LocationInput) {
	l.Name = in.Name
	l.Type = LocationType(in.Type)
	l.Address = optional(in.Address)
	l.OrganizationID = in.OrganizationID
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
