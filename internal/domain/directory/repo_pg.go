package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushealth/portal/internal/portalerr"
)

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, name, specialization, morning_start, morning_end,
	evening_start, evening_end, created_at, updated_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.MorningStart, &d.MorningEnd,
		&d.EveningStart, &d.EveningEnd, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: doctor", portalerr.ErrNotFound)
	}
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor (id, name, specialization, morning_start, morning_end, evening_start, evening_end)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		d.ID, d.Name, d.Specialization, d.MorningStart, d.MorningEnd, d.EveningStart, d.EveningEnd)
	return err
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE doctor SET name=$2, specialization=$3, morning_start=$4, morning_end=$5,
			evening_start=$6, evening_end=$7, updated_at=NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.MorningStart, d.MorningEnd, d.EveningStart, d.EveningEnd)
	return err
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *doctorRepoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

type overrideRepoPG struct{ pool *pgxpool.Pool }

func NewOverrideRepoPG(pool *pgxpool.Pool) OverrideRepository { return &overrideRepoPG{pool: pool} }

func (r *overrideRepoPG) Exists(ctx context.Context, doctorID uuid.UUID, date string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM doctor_unavailable_date WHERE doctor_id = $1 AND date = $2)`,
		doctorID, date).Scan(&exists)
	return exists, err
}

func (r *overrideRepoPG) Add(ctx context.Context, doctorID uuid.UUID, date string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor_unavailable_date (doctor_id, date)
		VALUES ($1, $2)
		ON CONFLICT (doctor_id, date) DO NOTHING`,
		doctorID, date)
	return err
}

func (r *overrideRepoPG) Remove(ctx context.Context, doctorID uuid.UUID, date string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM doctor_unavailable_date WHERE doctor_id = $1 AND date = $2`,
		doctorID, date)
	return err
}

func (r *overrideRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT date FROM doctor_unavailable_date WHERE doctor_id = $1 ORDER BY date`,
		doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
