package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// AppointmentRepository persists the appointment ledger. Create must fail
// with portalerr.ErrSlotConflict when another Booked row already holds the
// same (doctor, date, time); the Postgres implementation enforces this with
// a partial unique index so the ledger stays consistent even across
// processes.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// MarkCancelled flips Booked→Cancelled and reports whether a row
	// transitioned. false means the appointment was already cancelled.
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)
	DeleteHard(ctx context.Context, id uuid.UUID) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByStudent(ctx context.Context, studentID string) ([]*Appointment, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Appointment, int, error)
	// ListBookedTimes returns the "HH:MM" starts of Booked appointments for
	// the doctor on the date.
	ListBookedTimes(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error)
}
