package identity

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/patient-journal/internal/platform/db"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// -- Patient Repository --

type patientRepoPG struct {
	pool db.Querier
}

func NewPatientRepo(pool *pgxpool.Pool) PatientRepository {
	return &patientRepoPG{pool: pool}
}

func (r *patientRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientColumns = `id, first_name, last_name, email, birth_date, gender, phone, address, created_at, updated_at`

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patient (id, first_name, last_name, email, birth_date, gender, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Email, p.BirthDate, p.Gender, p.Phone, p.Address,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return errs.FromDB(err, "patient")
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientColumns+` FROM patient WHERE id = $1`, id))
	return p, errs.FromDB(err, "patient")
}

func (r *patientRepoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientColumns+` FROM patient WHERE email = $1`, email))
	return p, errs.FromDB(err, "patient")
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, error) {
	return r.query(ctx, `SELECT `+patientColumns+` FROM patient
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *patientRepoPG) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Patient, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+patientColumns+` FROM patient WHERE id = ANY($1)`, ids)
}

// SearchByName matches term anywhere in the first name, the last name or
// the full "first last" name, ignoring case.
func (r *patientRepoPG) SearchByName(ctx context.Context, term string, limit, offset int) ([]*Patient, error) {
	return r.query(ctx, `SELECT `+patientColumns+` FROM patient
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR (first_name || ' ' || last_name) ILIKE $1
		ORDER BY last_name, first_name, id LIMIT $2 OFFSET $3`,
		"%"+escapeLike(term)+"%", limit, offset)
}

func (r *patientRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&n)
	return n, errs.FromDB(err, "patient")
}

func (r *patientRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "patient")
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, errs.FromDB(err, "patient")
		}
		patients = append(patients, p)
	}
	return patients, errs.FromDB(rows.Err(), "patient")
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.BirthDate,
		&p.Gender, &p.Phone, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

// -- Practitioner Repository --

type practitionerRepoPG struct {
	pool db.Querier
}

func NewPractitionerRepo(pool *pgxpool.Pool) PractitionerRepository {
	return &practitionerRepoPG{pool: pool}
}

func (r *practitionerRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const practitionerColumns = `id, first_name, last_name, email, role, specialty, organization_id, created_at, updated_at`

func (r *practitionerRepoPG) Create(ctx context.Context, p *Practitioner) error {
	p.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO practitioner (id, first_name, last_name, email, role, specialty, organization_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		p.ID, p.FirstName, p.LastName, p.Email, p.Role, p.Specialty, p.OrganizationID,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	return errs.FromDB(err, "practitioner")
}

func (r *practitionerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	p, err := scanPractitioner(r.conn(ctx).QueryRow(ctx,
		`SELECT `+practitionerColumns+` FROM practitioner WHERE id = $1`, id))
	return p, errs.FromDB(err, "practitioner")
}

func (r *practitionerRepoPG) List(ctx context.Context, limit, offset int) ([]*Practitioner, error) {
	return r.query(ctx, `SELECT `+practitionerColumns+` FROM practitioner
		ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *practitionerRepoPG) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*Practitioner, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+practitionerColumns+` FROM practitioner WHERE id = ANY($1)`, ids)
}

func (r *practitionerRepoPG) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM practitioner`).Scan(&n)
	return n, errs.FromDB(err, "practitioner")
}

func (r *practitionerRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Practitioner, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "practitioner")
	}
	defer rows.Close()

	var out []*Practitioner
	for rows.Next() {
		p, err := scanPractitioner(rows)
		if err != nil {
			return nil, errs.FromDB(err, "practitioner")
		}
		out = append(out, p)
	}
	return out, errs.FromDB(rows.Err(), "practitioner")
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p Practitioner
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email, &p.Role,
		&p.Specialty, &p.OrganizationID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
