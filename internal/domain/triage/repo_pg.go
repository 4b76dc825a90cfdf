package triage

import (
	"context"
	"encoding/json"
	"errors"

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

const triageCols = `id, appointment_id, patient_id, doctor_id, vitals, vitals_completed,
	payment_mode, payment_status, payment_amount, payment_completed,
	sent_to_doctor, sent_at, created_at, updated_at`

func scanRecord(row pgx.Row, rec *Record) error {
	var rawVitals []byte
	err := row.Scan(
		&rec.ID, &rec.AppointmentID, &rec.PatientID, &rec.DoctorID, &rawVitals, &rec.VitalsCompleted,
		&rec.PaymentMode, &rec.PaymentStatus, &rec.PaymentAmount, &rec.PaymentCompleted,
		&rec.SentToDoctor, &rec.SentAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if len(rawVitals) > 0 {
		return json.Unmarshal(rawVitals, &rec.Vitals)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	var rec Record
	err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+triageCols+` FROM triage_record WHERE id = $1`, id), &rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Record, error) {
	var rec Record
	err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+triageCols+` FROM triage_record WHERE appointment_id = $1`, appointmentID), &rec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	rawVitals, err := json.Marshal(rec.Vitals)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO triage_record (
			id, appointment_id, patient_id, doctor_id, vitals, vitals_completed,
			payment_mode, payment_status, payment_amount, payment_completed,
			sent_to_doctor, sent_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		rec.ID, rec.AppointmentID, rec.PatientID, rec.DoctorID, rawVitals, rec.VitalsCompleted,
		rec.PaymentMode, rec.PaymentStatus, rec.PaymentAmount, rec.PaymentCompleted,
		rec.SentToDoctor, rec.SentAt,
	)
	return err
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	rawVitals, err := json.Marshal(rec.Vitals)
	if err != nil {
		return err
	}
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE triage_record SET
			vitals=$2, vitals_completed=$3,
			payment_mode=$4, payment_status=$5, payment_amount=$6, payment_completed=$7,
			sent_to_doctor=$8, sent_at=$9, updated_at=NOW()
		WHERE id = $1`,
		rec.ID, rawVitals, rec.VitalsCompleted,
		rec.PaymentMode, rec.PaymentStatus, rec.PaymentAmount, rec.PaymentCompleted,
		rec.SentToDoctor, rec.SentAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListPending(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_record WHERE doctor_id = $1 AND NOT sent_to_doctor`,
		doctorID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+triageCols+` FROM triage_record
		WHERE doctor_id = $1 AND NOT sent_to_doctor
		ORDER BY created_at LIMIT $2 OFFSET $3`,
		doctorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*Record
	for rows.Next() {
		var rec Record
		if err := scanRecord(rows, &rec); err != nil {
			return nil, 0, err
		}
		recs = append(recs, &rec)
	}
	return recs, total, rows.Err()
}
