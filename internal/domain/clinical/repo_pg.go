package clinical

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushealth/portal/internal/portalerr"
)

type prescriptionRepoPG struct{ pool *pgxpool.Pool }

func NewPrescriptionRepoPG(pool *pgxpool.Pool) PrescriptionRepository {
	return &prescriptionRepoPG{pool: pool}
}

const prescriptionCols = `id, appointment_id, student_id, doctor_id, doctor_name, date,
	diagnosis, medications, notes, refer_to_pharmacist, dispense_status,
	dispensed_by, dispensed_at, created_at, updated_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.AppointmentID, &p.StudentID, &p.DoctorID, &p.DoctorName, &p.Date,
		&p.Diagnosis, &p.Medications, &p.Notes, &p.ReferToPharmacist, &p.DispenseStatus,
		&p.DispensedBy, &p.DispensedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: prescription", portalerr.ErrNotFound)
	}
	return &p, err
}

func (r *prescriptionRepoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescription (id, appointment_id, student_id, doctor_id, doctor_name, date,
			diagnosis, medications, notes, refer_to_pharmacist, dispense_status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		p.ID, p.AppointmentID, p.StudentID, p.DoctorID, p.DoctorName, p.Date,
		p.Diagnosis, p.Medications, p.Notes, p.ReferToPharmacist, p.DispenseStatus)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: appointment %s already has a prescription", portalerr.ErrValidation, p.AppointmentID)
	}
	return err
}

func (r *prescriptionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return scanPrescription(r.pool.QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
}

func (r *prescriptionRepoPG) MarkDispensed(ctx context.Context, id uuid.UUID, pharmacistID string, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE prescription
		SET dispense_status = $2, dispensed_by = $3, dispensed_at = $4, updated_at = NOW()
		WHERE id = $1 AND dispense_status = $5`,
		id, DispenseDispensed, pharmacistID, at, DispensePending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *prescriptionRepoPG) ListByStudent(ctx context.Context, studentID string) ([]*Prescription, error) {
	return r.list(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE student_id = $1 ORDER BY date DESC, created_at DESC`,
		studentID)
}

func (r *prescriptionRepoPG) ListPending(ctx context.Context) ([]*Prescription, error) {
	return r.list(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE dispense_status = $1 ORDER BY created_at`,
		DispensePending)
}

func (r *prescriptionRepoPG) Stats(ctx context.Context) (*DispenseStats, error) {
	var s DispenseStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE dispense_status = $1),
			COUNT(*) FILTER (WHERE dispense_status = $2)
		FROM prescription`,
		DispensePending, DispenseDispensed).Scan(&s.Pending, &s.Dispensed)
	return &s, err
}

func (r *prescriptionRepoPG) list(ctx context.Context, query string, args ...any) ([]*Prescription, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

type labRepoPG struct{ pool *pgxpool.Pool }

func NewLabRepoPG(pool *pgxpool.Pool) LabRepository { return &labRepoPG{pool: pool} }

const labOrderCols = `id, appointment_id, student_id, doctor_id, test_type, notes, status,
	report_file_ref, technician_id, remarks, completed_at, created_at, updated_at`

func scanLabOrder(row pgx.Row) (*LabOrder, error) {
	var o LabOrder
	err := row.Scan(&o.ID, &o.AppointmentID, &o.StudentID, &o.DoctorID, &o.TestType, &o.Notes,
		&o.Status, &o.ReportFileRef, &o.TechnicianID, &o.Remarks, &o.CompletedAt,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: lab order", portalerr.ErrNotFound)
	}
	return &o, err
}

func (r *labRepoPG) CreateOrder(ctx context.Context, o *LabOrder) error {
	o.ID = uuid.New()
	o.Status = OrderPending
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lab_order (id, appointment_id, student_id, doctor_id, test_type, notes, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		o.ID, o.AppointmentID, o.StudentID, o.DoctorID, o.TestType, o.Notes, o.Status)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: appointment %s already has a lab order", portalerr.ErrValidation, o.AppointmentID)
	}
	return err
}

func (r *labRepoPG) GetOrderByID(ctx context.Context, id uuid.UUID) (*LabOrder, error) {
	return scanLabOrder(r.pool.QueryRow(ctx,
		`SELECT `+labOrderCols+` FROM lab_order WHERE id = $1`, id))
}

// CompleteOrder runs the status flip and the report insert in one
// transaction so a Completed order can never exist without its report.
func (r *labRepoPG) CompleteOrder(ctx context.Context, o *LabOrder, report *LabReport) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE lab_order
		SET status = $2, report_file_ref = $3, technician_id = $4, remarks = $5,
			completed_at = $6, updated_at = NOW()
		WHERE id = $1 AND status = $7`,
		o.ID, OrderCompleted, o.ReportFileRef, o.TechnicianID, o.Remarks, o.CompletedAt, OrderPending)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	report.ID = uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO lab_report (id, order_id, student_id, date, test_name, remarks, file_ref)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		report.ID, report.OrderID, report.StudentID, report.Date, report.TestName, report.Remarks, report.FileRef)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *labRepoPG) ListOrdersByStudent(ctx context.Context, studentID string) ([]*LabOrder, error) {
	return r.listOrders(ctx,
		`SELECT `+labOrderCols+` FROM lab_order WHERE student_id = $1 ORDER BY created_at DESC`,
		studentID)
}

func (r *labRepoPG) ListPendingOrders(ctx context.Context) ([]*LabOrder, error) {
	return r.listOrders(ctx,
		`SELECT `+labOrderCols+` FROM lab_order WHERE status = $1 ORDER BY created_at`,
		OrderPending)
}

func (r *labRepoPG) ListReportsByStudent(ctx context.Context, studentID string) ([]*LabReport, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, student_id, date, test_name, remarks, file_ref, created_at
		FROM lab_report WHERE student_id = $1 ORDER BY date DESC, created_at DESC`,
		studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabReport
	for rows.Next() {
		var rep LabReport
		if err := rows.Scan(&rep.ID, &rep.OrderID, &rep.StudentID, &rep.Date, &rep.TestName,
			&rep.Remarks, &rep.FileRef, &rep.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &rep)
	}
	return items, rows.Err()
}

func (r *labRepoPG) Stats(ctx context.Context) (*LabStats, error) {
	var s LabStats
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM lab_order`,
		OrderPending, OrderCompleted).Scan(&s.Pending, &s.Completed)
	return &s, err
}

func (r *labRepoPG) listOrders(ctx context.Context, query string, args ...any) ([]*LabOrder, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*LabOrder
	for rows.Next() {
		o, err := scanLabOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, o)
	}
	return items, rows.Err()
}
