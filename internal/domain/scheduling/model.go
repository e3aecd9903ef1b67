package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/domain/directory"
	"github.com/campushealth/portal/internal/portalerr"
)

// Status is the appointment lifecycle. Booked→Cancelled is the only
// transition; cancellation is terminal. Records are never deleted by the
// normal flow (admin hard delete is the out-of-band correction path).
type Status string

const (
	StatusBooked    Status = "Booked"
	StatusCancelled Status = "Cancelled"
)

// Appointment maps to the appointment table. Date and Time are stored as the
// literal "YYYY-MM-DD" / "HH:MM" strings the slot generator produces; slot
// occupancy is decided by exact string match, so no clock arithmetic touches
// persisted values.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DoctorName  string    `db:"doctor_name" json:"doctor_name"`
	Date        string    `db:"date" json:"date"`
	Time        string    `db:"time" json:"time"`
	Reason      string    `db:"reason" json:"reason"`
	Status      Status    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SlotKey identifies the single logical resource a booking contends on.
func (a *Appointment) SlotKey() string {
	return a.DoctorID.String() + "|" + a.Date
}

// BookRequest carries a booking submission. Student identity comes from the
// external session service; names are denormalized onto the record the same
// way the rest of the portal displays them.
type BookRequest struct {
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	DoctorID    uuid.UUID `json:"doctor_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Reason      string    `json:"reason"`
}

// Validate checks the request shape. Slot availability is not checked here;
// that happens under the slot key lock at commit time.
func (r *BookRequest) Validate() error {
	if r.StudentID == "" {
		return fmt.Errorf("%w: student_id is required", portalerr.ErrValidation)
	}
	if r.DoctorID == uuid.Nil {
		return fmt.Errorf("%w: doctor_id is required", portalerr.ErrValidation)
	}
	if r.Reason == "" {
		return fmt.Errorf("%w: reason is required", portalerr.ErrValidation)
	}
	if _, err := directory.ParseDate(r.Date); err != nil {
		return err
	}
	if _, err := directory.ParseClock(r.Time); err != nil {
		return err
	}
	return nil
}
