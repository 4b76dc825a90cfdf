package encounter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmitra/api/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const encCols = `id, appointment_id, patient_id, doctor_id, status, chief_complaint, symptoms,
	diagnoses, medications, lab_tests, advice, follow_up_date,
	idempotency_key, finalized_at, created_at, updated_at`

func scanEnc(row pgx.Row, e *Encounter) error {
	var rawDiag, rawMeds, rawLabs []byte
	var idemKey *string
	err := row.Scan(
		&e.ID, &e.AppointmentID, &e.PatientID, &e.DoctorID, &e.Status, &e.ChiefComplaint, &e.Symptoms,
		&rawDiag, &rawMeds, &rawLabs, &e.Advice, &e.FollowUpDate,
		&idemKey, &e.FinalizedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if idemKey != nil {
		e.IdempotencyKey = *idemKey
	}
	if err := json.Unmarshal(rawDiag, &e.Diagnoses); err != nil {
		return fmt.Errorf("decoding diagnoses: %w", err)
	}
	if err := json.Unmarshal(rawMeds, &e.Medications); err != nil {
		return fmt.Errorf("decoding medications: %w", err)
	}
	if err := json.Unmarshal(rawLabs, &e.LabTests); err != nil {
		return fmt.Errorf("decoding lab tests: %w", err)
	}
	return nil
}

func marshalLists(e *Encounter) (diag, meds, labs []byte, err error) {
	if e.Diagnoses == nil {
		e.Diagnoses = []Diagnosis{}
	}
	if e.Medications == nil {
		e.Medications = []Medication{}
	}
	if e.LabTests == nil {
		e.LabTests = []string{}
	}
	if diag, err = json.Marshal(e.Diagnoses); err != nil {
		return
	}
	if meds, err = json.Marshal(e.Medications); err != nil {
		return
	}
	labs, err = json.Marshal(e.LabTests)
	return
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	var e Encounter
	err := scanEnc(r.conn(ctx).QueryRow(ctx, `SELECT `+encCols+` FROM encounter WHERE id = $1`, id), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Encounter, error) {
	var e Encounter
	err := scanEnc(r.conn(ctx).QueryRow(ctx,
		`SELECT `+encCols+` FROM encounter WHERE appointment_id = $1`, appointmentID), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) GetByIdempotencyKey(ctx context.Context, key string) (*Encounter, error) {
	var e Encounter
	err := scanEnc(r.conn(ctx).QueryRow(ctx,
		`SELECT `+encCols+` FROM encounter WHERE idempotency_key = $1`, key), &e)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Create(ctx context.Context, e *Encounter) error {
	e.ID = uuid.New()
	diag, meds, labs, err := marshalLists(e)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO encounter (
			id, appointment_id, patient_id, doctor_id, status, chief_complaint, symptoms,
			diagnoses, medications, lab_tests, advice, follow_up_date, idempotency_key, finalized_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		e.ID, e.AppointmentID, e.PatientID, e.DoctorID, e.Status, e.ChiefComplaint, e.Symptoms,
		diag, meds, labs, e.Advice, e.FollowUpDate, nullable(e.IdempotencyKey), e.FinalizedAt,
	)
	return err
}

func (r *repoPG) Update(ctx context.Context, e *Encounter) error {
	diag, meds, labs, err := marshalLists(e)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE encounter SET
			status=$2, chief_complaint=$3, symptoms=$4,
			diagnoses=$5, medications=$6, lab_tests=$7,
			advice=$8, follow_up_date=$9, idempotency_key=$10, finalized_at=$11, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Status, e.ChiefComplaint, e.Symptoms,
		diag, meds, labs, e.Advice, e.FollowUpDate, nullable(e.IdempotencyKey), e.FinalizedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, f SearchFilter, limit, offset int) ([]*Encounter, int, error) {
	where := `1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.PatientID != uuid.Nil {
		where += ` AND patient_id = ` + arg(f.PatientID)
	}
	if f.PatientName != "" {
		p := arg("%" + f.PatientName + "%")
		where += ` AND patient_id IN (SELECT id FROM patient WHERE full_name ILIKE ` + p + `)`
	}
	if f.DoctorID != uuid.Nil {
		where += ` AND doctor_id = ` + arg(f.DoctorID)
	}
	if f.Status != "" {
		where += ` AND status = ` + arg(f.Status)
	}
	if f.From != "" {
		where += ` AND created_at >= ` + arg(f.From)
	}
	if f.To != "" {
		where += ` AND created_at <= ` + arg(f.To)
	}
	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		where += ` AND (chief_complaint ILIKE ` + p +
			` OR symptoms ILIKE ` + p +
			` OR diagnoses::text ILIKE ` + p +
			` OR medications::text ILIKE ` + p + `)`
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM encounter WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + encCols + ` FROM encounter WHERE ` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var encs []*Encounter
	for rows.Next() {
		var e Encounter
		if err := scanEnc(rows, &e); err != nil {
			return nil, 0, err
		}
		encs = append(encs, &e)
	}
	return encs, total, rows.Err()
}

// nullable maps the empty string to NULL so the partial unique index on
// idempotency_key only covers real keys.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
