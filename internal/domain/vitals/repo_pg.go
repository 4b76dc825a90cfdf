package vitals

import (
	"context"

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

const vitalCols = `id, key, name, unit, input_type, placeholder, icon, color, display_order, is_active, created_at, updated_at`

func (r *repoPG) ListActive(ctx context.Context) ([]VitalDefinition, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+vitalCols+` FROM vital_definition WHERE is_active ORDER BY display_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []VitalDefinition
	for rows.Next() {
		var v VitalDefinition
		if err := scanVital(rows, &v); err != nil {
			return nil, err
		}
		defs = append(defs, v)
	}
	return defs, rows.Err()
}

func (r *repoPG) GetByKey(ctx context.Context, key string) (*VitalDefinition, error) {
	var v VitalDefinition
	row := r.conn(ctx).QueryRow(ctx, `SELECT `+vitalCols+` FROM vital_definition WHERE key = $1`, key)
	if err := scanVital(row, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repoPG) Create(ctx context.Context, v *VitalDefinition) error {
	v.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO vital_definition (id, key, name, unit, input_type, placeholder, icon, color, display_order, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		v.ID, v.Key, v.Name, v.Unit, v.InputType, v.Placeholder, v.Icon, v.Color, v.DisplayOrder, v.IsActive,
	)
	return err
}

func (r *repoPG) Update(ctx context.Context, v *VitalDefinition) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE vital_definition SET
			name=$2, unit=$3, input_type=$4, placeholder=$5, icon=$6, color=$7,
			display_order=$8, is_active=$9, updated_at=NOW()
		WHERE key = $1`,
		v.Key, v.Name, v.Unit, v.InputType, v.Placeholder, v.Icon, v.Color, v.DisplayOrder, v.IsActive,
	)
	return err
}

func (r *repoPG) Deactivate(ctx context.Context, key string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE vital_definition SET is_active = FALSE, updated_at = NOW() WHERE key = $1`, key)
	return err
}

func scanVital(row pgx.Row, v *VitalDefinition) error {
	return row.Scan(
		&v.ID, &v.Key, &v.Name, &v.Unit, &v.InputType, &v.Placeholder,
		&v.Icon, &v.Color, &v.DisplayOrder, &v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
}
