package clinical

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/patient-journal/internal/platform/db"
	"github.com/ehr/patient-journal/internal/platform/errs"
)

// -- Condition Repository --

type conditionRepoPG struct {
	pool db.Querier
}

func NewConditionRepo(pool *pgxpool.Pool) ConditionRepository {
	return &conditionRepoPG{pool: pool}
}

func (r *conditionRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const condColumns = `id, patient_id, practitioner_id, name, type, severity, description,
	diagnosed_at, created_at, updated_at`

const condOrder = ` ORDER BY diagnosed_at DESC, id DESC`

func (r *conditionRepoPG) Create(ctx context.Context, c *Condition) error {
	c.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO condition (id, patient_id, practitioner_id, name, type, severity, description, diagnosed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		c.ID, c.PatientID, c.PractitionerID, c.Name, c.Type, c.Severity, c.Description, c.DiagnosedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return errs.FromDB(err, "condition")
}

func (r *conditionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Condition, error) {
	c, err := scanCondition(r.conn(ctx).QueryRow(ctx, `SELECT `+condColumns+` FROM condition WHERE id = $1`, id))
	return c, errs.FromDB(err, "condition")
}

// Update replaces the mutable fields. Owner ids are never rewritten.
func (r *conditionRepoPG) Update(ctx context.Context, c *Condition) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE condition SET
			name = $2, type = $3, severity = $4, description = $5, diagnosed_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Type, c.Severity, c.Description, c.DiagnosedAt,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	return errs.FromDB(err, "condition")
}

func (r *conditionRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM condition WHERE id = $1`, id)
	if err != nil {
		return false, errs.FromDB(err, "condition")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *conditionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Condition, error) {
	return r.query(ctx, `SELECT `+condColumns+` FROM condition WHERE patient_id = $1`+condOrder, patientID)
}

func (r *conditionRepoPG) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Condition, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+condColumns+` FROM condition WHERE patient_id = ANY($1)`+condOrder, patientIDs)
}

func (r *conditionRepoPG) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*Condition, error) {
	return r.query(ctx, `SELECT `+condColumns+` FROM condition WHERE practitioner_id = $1`+condOrder, practitionerID)
}

func (r *conditionRepoPG) ListBySeverityAbove(ctx context.Context, threshold int) ([]*Condition, error) {
	return r.query(ctx, `SELECT `+condColumns+` FROM condition WHERE severity > $1
		ORDER BY severity DESC, diagnosed_at DESC, id DESC`, threshold)
}

func (r *conditionRepoPG) ListByType(ctx context.Context, t ConditionType) ([]*Condition, error) {
	return r.query(ctx, `SELECT `+condColumns+` FROM condition WHERE type = $1`+condOrder, t)
}

func (r *conditionRepoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM condition WHERE patient_id = $1`, patientID).Scan(&n)
	return n, errs.FromDB(err, "condition")
}

func (r *conditionRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Condition, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "condition")
	}
	defer rows.Close()

	var out []*Condition
	for rows.Next() {
		c, err := scanCondition(rows)
		if err != nil {
			return nil, errs.FromDB(err, "condition")
		}
		out = append(out, c)
	}
	return out, errs.FromDB(rows.Err(), "condition")
}

func scanCondition(row pgx.Row) (*Condition, error) {
	var c Condition
	err := row.Scan(&c.ID, &c.PatientID, &c.PractitionerID, &c.Name, &c.Type, &c.Severity,
		&c.Description, &c.DiagnosedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// -- Observation Repository --

type observationRepoPG struct {
	pool db.Querier
}

func NewObservationRepo(pool *pgxpool.Pool) ObservationRepository {
	return &observationRepoPG{pool: pool}
}

func (r *observationRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const obsColumns = `id, patient_id, practitioner_id, code, value, unit, note,
	recorded_at, created_at, updated_at`

const obsOrder = ` ORDER BY recorded_at DESC, id DESC`

func (r *observationRepoPG) Create(ctx context.Context, o *Observation) error {
	o.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO observation (id, patient_id, practitioner_id, code, value, unit, note, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		o.ID, o.PatientID, o.PractitionerID, o.Code, o.Value, o.Unit, o.Note, o.RecordedAt,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return errs.FromDB(err, "observation")
}

func (r *observationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Observation, error) {
	o, err := scanObservation(r.conn(ctx).QueryRow(ctx, `SELECT `+obsColumns+` FROM observation WHERE id = $1`, id))
	return o, errs.FromDB(err, "observation")
}

func (r *observationRepoPG) Update(ctx context.Context, o *Observation) error {
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE observation SET
			code = $2, value = $3, unit = $4, note = $5, recorded_at = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		o.ID, o.Code, o.Value, o.Unit, o.Note, o.RecordedAt,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return errs.FromDB(err, "observation")
}

func (r *observationRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM observation WHERE id = $1`, id)
	if err != nil {
		return false, errs.FromDB(err, "observation")
	}
	return tag.RowsAffected() > 0, nil
}

func (r *observationRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Observation, error) {
	return r.query(ctx, `SELECT `+obsColumns+` FROM observation WHERE patient_id = $1`+obsOrder, patientID)
}

func (r *observationRepoPG) ListByPatients(ctx context.Context, patientIDs []uuid.UUID) ([]*Observation, error) {
	if len(patientIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+obsColumns+` FROM observation WHERE patient_id = ANY($1)`+obsOrder, patientIDs)
}

func (r *observationRepoPG) ListByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*Observation, error) {
	return r.query(ctx, `SELECT `+obsColumns+` FROM observation WHERE practitioner_id = $1`+obsOrder, practitionerID)
}

func (r *observationRepoPG) MostRecentByPatient(ctx context.Context, patientID uuid.UUID) (*Observation, error) {
	o, err := scanObservation(r.conn(ctx).QueryRow(ctx,
		`SELECT `+obsColumns+` FROM observation WHERE patient_id = $1`+obsOrder+` LIMIT 1`, patientID))
	return o, errs.FromDB(err, "observation")
}

func (r *observationRepoPG) CountByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	var n int64
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM observation WHERE patient_id = $1`, patientID).Scan(&n)
	return n, errs.FromDB(err, "observation")
}

func (r *observationRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Observation, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, errs.FromDB(err, "observation")
	}
	defer rows.Close()

	var out []*Observation
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, errs.FromDB(err, "observation")
		}
		out = append(out, o)
	}
	return out, errs.FromDB(rows.Err(), "observation")
}

func scanObservation(row pgx.Row) (*Observation, error) {
	var o Observation
	err := row.Scan(&o.ID, &o.PatientID, &o.PractitionerID, &o.Code, &o.Value, &o.Unit,
		&o.Note, &o.RecordedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
