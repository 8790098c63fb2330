package encounter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/patient-journal/internal/platform/db"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

type repoPG struct {
	pool db.Querier
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const encCols = `id, patient_id, practitioner_id, location_id, reason, notes,
	occurred_at, created_at, updated_at`

const encOrder = ` ORDER BY occurred_at DESC, id DESC`

func (r *repoPG) Create(ctx context.Context, e *Encounter) error {
	e.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO encounter (id, patient_id, practitioner_id, location_id, reason, notes, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		e.ID, e.PatientID, e.PractitionerID, e.LocationID, e.Reason, e.Notes, e.OccurredAt,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return errs.FromDB(err, "encounter")
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	e, err := scanEnc(r.conn(ctx).QueryRow(ctx, `SELECT `+encCols+` FROM encounter WHERE id = $1`, id))
	return e, errs.FromDB(err, "encounter")
}

// Update replaces the mutable fields. Owner ids are never rewritten.
func (r *repoPG) Update(ctx context.Context, e *Encounter) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE encounter SET
			location_id = $2, reason = $3, notes = $4, occurred_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		e.ID, e.LocationID, e.Reason, e.Notes, e.OccurredAt,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return errs.FromDB(err, "encounter")
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM encounter WHERE id = $1`, id)
	if err != nil {
		return false, errs.FromDB(err, "encounter")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Encounter, error) {
	return r.query(ctx, `SELECT `+encCols+` FROM encounter WHERE patient_id = $1`+encOrder, patientID)
}

func (r *repoPG) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Encounter, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+encCols+` FROM encounter WHERE patient_id = ANY($1)`+encOrder, patientIDs)
}

func (r *repoPG) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*Encounter, error) {
	return r.query(ctx, `SELECT `+encCols+` FROM encounter WHERE practitioner_id = $1`+encOrder, practitionerID)
}

func (r *repoPG) ListSince(ctx context.Context, since time.Time) ([]*Encounter, error) {
	return r.query(ctx, `SELECT `+encCols+` FROM encounter WHERE occurred_at >= $1`+encOrder, since)
}

func (r *repoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM encounter WHERE patient_id = $1`, patientID).Scan(&n)
	return n, errs.FromDB(err, "encounter")
}

func (r *repoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Encounter, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "encounter")
	}
	defer rows.Close()

	var out []*Encounter
	for rows.Next() {
		e, err := scanEnc(rows)
		if err != nil {
			return nil, errs.FromDB(err, "encounter")
		}
		out = append(out, e)
	}
	return out, errs.FromDB(rows.Err(), "encounter")
}

func scanEnc(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.PatientID, &e.PractitionerID, &e.LocationID, &e.Reason, &e.Notes,
		&e.OccurredAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
