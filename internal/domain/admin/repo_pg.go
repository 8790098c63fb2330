package admin

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/patient-journal/internal/platform/db"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// -- Organization Repository --

type orgRepoPG struct {
	pool db.Querier
}

func NewOrganizationRepo(pool *pgxpool.Pool) OrganizationRepository {
	return &orgRepoPG{pool: pool}
}

func (r *orgRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const orgColumns = `id, name, type, phone, email, address, created_at, updated_at`

func (r *orgRepoPG) Create(ctx context.Context, org *Organization) error {
	org.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO organization (id, name, type, phone, email, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`,
		org.ID, org.Name, org.Type, org.Phone, org.Email, org.Address,
	).Scan(&org.CreatedAt, &org.UpdatedAt)
	return errs.FromDB(err, "organization")
}

func (r *orgRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Organization, error) {
	org, err := scanOrg(r.conn(ctx).QueryRow(ctx, `SELECT `+orgColumns+` FROM organization WHERE id = $1`, id))
	return org, errs.FromDB(err, "organization")
}

func (r *orgRepoPG) Update(ctx context.Context, org *Organization) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE organization SET
			name = $2, type = $3, phone = $4, email = $5, address = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		org.ID, org.Name, org.Type, org.Phone, org.Email, org.Address,
	).Scan(&org.CreatedAt, &org.UpdatedAt)
	return errs.FromDB(err, "organization")
}

func (r *orgRepoPG) List(ctx context.Context, limit, offset int) ([]*Organization, error) {
	return r.query(ctx, `SELECT `+orgColumns+` FROM organization
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *orgRepoPG) ListByType(ctx context.Context, t OrganizationType) ([]*Organization, error) {
	return r.query(ctx, `SELECT `+orgColumns+` FROM organization WHERE type = $1
		ORDER BY created_at, id`, t)
}

func (r *orgRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM organization`).Scan(&n)
	return n, errs.FromDB(err, "organization")
}

func (r *orgRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Organization, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "organization")
	}
	defer rows.Close()

	var orgs []*Organization
	for rows.Next() {
		org, err := scanOrg(rows)
		if err != nil {
			return nil, errs.FromDB(err, "organization")
		}
		orgs = append(orgs, org)
	}
	return orgs, errs.FromDB(rows.Err(), "organization")
}

func scanOrg(row pgx.Row) (*Organization, error) {
	var o Organization
	err := row.Scan(&o.ID, &o.Name, &o.Type, &o.Phone, &o.Email, &o.Address, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// -- Location Repository --

type locRepoPG struct {
	pool db.Querier
}

func NewLocationRepo(pool *pgxpool.Pool) LocationRepository {
	return &locRepoPG{pool: pool}
}

func (r *locRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const locColumns = `id, name, type, address, organization_id, created_at, updated_at`

func (r *locRepoPG) Create(ctx context.Context, loc *Location) error {
	loc.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO location (id, name, type, address, organization_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		loc.ID, loc.Name, loc.Type, loc.Address, loc.OrganizationID,
	).Scan(&loc.CreatedAt, &loc.UpdatedAt)
	return errs.FromDB(err, "location")
}

func (r *locRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	loc, err := scanLoc(r.conn(ctx).QueryRow(ctx, `SELECT `+locColumns+` FROM location WHERE id = $1`, id))
	return loc, errs.FromDB(err, "location")
}

func (r *locRepoPG) Update(ctx context.Context, loc *Location) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE location SET
			name = $2, type = $3, address = $4, organization_id = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		loc.ID, loc.Name, loc.Type, loc.Address, loc.OrganizationID,
	).Scan(&loc.CreatedAt, &loc.UpdatedAt)
	return errs.FromDB(err, "location")
}

func (r *locRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM location WHERE id = $1`, id)
	if err != nil {
		return false, errs.FromDB(err, "location")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *locRepoPG) List(ctx context.Context, limit, offset int) ([]*Location, error) {
	return r.query(ctx, `SELECT `+locColumns+` FROM location
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *locRepoPG) ListByType(ctx context.Context, t LocationType) ([]*Location, error) {
	return r.query(ctx, `SELECT `+locColumns+` FROM location WHERE type = $1
		ORDER BY created_at, id`, t)
}

func (r *locRepoPG) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*Location, error) {
	return r.query(ctx, `SELECT `+locColumns+` FROM location WHERE organization_id = $1
		ORDER BY created_at, id`, orgID)
}

func (r *locRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM location`).Scan(&n)
	return n, errs.FromDB(err, "location")
}

func (r *locRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Location, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "location")
	}
	defer rows.Close()

	var locs []*Location
	for rows.Next() {
		loc, err := scanLoc(rows)
		if err != nil {
			return nil, errs.FromDB(err, "location")
		}
		locs = append(locs, loc)
	}
	return locs, errs.FromDB(rows.Err(), "location")
}

func scanLoc(row pgx.Row) (*Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.Name, &l.Type, &l.Address, &l.OrganizationID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
