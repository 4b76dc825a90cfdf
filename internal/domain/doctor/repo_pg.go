package doctor

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medmitra/api/internal/domain/vitals"
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

const doctorCols = `id, full_name, qualification, registration_number, specialty, consultation_fee, created_at, updated_at`

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id).Scan(
		&d.ID, &d.FullName, &d.Qualification, &d.RegistrationNumber, &d.Specialty,
		&d.ConsultationFee, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY full_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var docs []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.FullName, &d.Qualification, &d.RegistrationNumber,
			&d.Specialty, &d.ConsultationFee, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		docs = append(docs, &d)
	}
	return docs, total, rows.Err()
}

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, full_name, qualification, registration_number, specialty, consultation_fee)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		d.ID, d.FullName, d.Qualification, d.RegistrationNumber, d.Specialty, d.ConsultationFee,
	)
	return err
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET
			full_name=$2, qualification=$3, registration_number=$4, specialty=$5,
			consultation_fee=$6, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.FullName, d.Qualification, d.RegistrationNumber, d.Specialty, d.ConsultationFee,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) GetPreference(ctx context.Context, doctorID uuid.UUID) (*Preference, error) {
	var p Preference
	var raw []byte
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT doctor_id, vitals, updated_at FROM doctor_preference WHERE doctor_id = $1`,
		doctorID).Scan(&p.DoctorID, &raw, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// No saved layout yet; callers reconcile from an empty preference.
		return &Preference{DoctorID: doctorID, Vitals: vitals.Preference{}}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &p.Vitals); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) SavePreference(ctx context.Context, p *Preference) error {
	raw, err := json.Marshal(p.Vitals)
	if err != nil {
		return err
	}
	_, err = r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_preference (doctor_id, vitals, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (doctor_id) DO UPDATE SET vitals = EXCLUDED.vitals, updated_at = NOW()`,
		p.DoctorID, raw,
	)
	return err
}
