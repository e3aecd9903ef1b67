package clinical

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/portalerr"
)

// DispenseStatus tracks the pharmacy leg of a prescription. NotApplicable is
// terminal from birth when the doctor did not refer; Pending→Dispensed is the
// only transition and it happens exactly once.
type DispenseStatus string

const (
	DispenseNotApplicable DispenseStatus = "NotApplicable"
	DispensePending       DispenseStatus = "Pending"
	DispenseDispensed     DispenseStatus = "Dispensed"
)

// OrderStatus is the lab-order lifecycle: Pending→Completed, once.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderCompleted OrderStatus = "Completed"
)

type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription is written once by the prescribing doctor and immutable
// afterwards except for the dispense transition. AppointmentID is a weak
// reference: the visit record may be cancelled or even hard-deleted without
// touching the prescription.
type Prescription struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	AppointmentID     uuid.UUID      `db:"appointment_id" json:"appointment_id"`
	StudentID         string         `db:"student_id" json:"student_id"`
	DoctorID          uuid.UUID      `db:"doctor_id" json:"doctor_id"`
	DoctorName        string         `db:"doctor_name" json:"doctor_name"`
	Date              string         `db:"date" json:"date"`
	Diagnosis         string         `db:"diagnosis" json:"diagnosis"`
	Medications       []Medication   `db:"medications" json:"medications"`
	Notes             string         `db:"notes" json:"notes"`
	ReferToPharmacist bool           `db:"refer_to_pharmacist" json:"refer_to_pharmacist"`
	DispenseStatus    DispenseStatus `db:"dispense_status" json:"dispense_status"`
	DispensedBy       *string        `db:"dispensed_by" json:"dispensed_by,omitempty"`
	DispensedAt       *time.Time     `db:"dispensed_at" json:"dispensed_at,omitempty"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

type LabOrder struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	AppointmentID uuid.UUID   `db:"appointment_id" json:"appointment_id"`
	StudentID     string      `db:"student_id" json:"student_id"`
	DoctorID      uuid.UUID   `db:"doctor_id" json:"doctor_id"`
	TestType      string      `db:"test_type" json:"test_type"`
	Notes         string      `db:"notes" json:"notes"`
	Status        OrderStatus `db:"status" json:"status"`
	ReportFileRef *string     `db:"report_file_ref" json:"report_file_ref,omitempty"`
	TechnicianID  *string     `db:"technician_id" json:"technician_id,omitempty"`
	Remarks       *string     `db:"remarks" json:"remarks,omitempty"`
	CompletedAt   *time.Time  `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}

// LabReport is the durable history entry appended when an order completes.
// It exists if and only if its order is Completed; both are written in one
// transaction.
type LabReport struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OrderID   uuid.UUID `db:"order_id" json:"order_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Date      string    `db:"date" json:"date"`
	TestName  string    `db:"test_name" json:"test_name"`
	Remarks   string    `db:"remarks" json:"remarks"`
	FileRef   string    `db:"file_ref" json:"file_ref"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CreatePrescriptionRequest struct {
	AppointmentID     uuid.UUID    `json:"appointment_id"`
	Diagnosis         string       `json:"diagnosis"`
	Medications       []Medication `json:"medications"`
	Notes             string       `json:"notes"`
	ReferToPharmacist bool         `json:"refer_to_pharmacist"`
}

func (r *CreatePrescriptionRequest) Validate() error {
	if r.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointment_id is required", portalerr.ErrValidation)
	}
	if len(r.Medications) == 0 {
		return fmt.Errorf("%w: at least one medication is required", portalerr.ErrValidation)
	}
	for i, m := range r.Medications {
		if m.Name == "" {
			return fmt.Errorf("%w: medication %d has no name", portalerr.ErrValidation, i)
		}
	}
	return nil
}

type CreateLabOrderRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	TestType      string    `json:"test_type"`
	Notes         string    `json:"notes"`
}

func (r *CreateLabOrderRequest) Validate() error {
	if r.AppointmentID == uuid.Nil {
		return fmt.Errorf("%w: appointment_id is required", portalerr.ErrValidation)
	}
	if r.TestType == "" {
		return fmt.Errorf("%w: test_type is required", portalerr.ErrValidation)
	}
	return nil
}

// DispenseStats backs the pharmacist dashboard.
type DispenseStats struct {
	Pending   int `json:"pending"`
	Dispensed int `json:"dispensed"`
}

// LabStats backs the lab dashboard.
type LabStats struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}
