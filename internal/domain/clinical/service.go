package clinical

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/access"
	"github.com/campushealth/portal/internal/domain/scheduling"
	"github.com/campushealth/portal/internal/portalerr"
)

// Appointments is the slice of the ledger the clinical workflows need: a
// prescription or lab order attaches to an existing visit record of any
// status. scheduling's repository satisfies it.
type Appointments interface {
	GetByID(ctx context.Context, id uuid.UUID) (*scheduling.Appointment, error)
}

type Service struct {
	prescriptions PrescriptionRepository
	lab           LabRepository
	appts         Appointments
	policy        *access.Policy
	now           func() time.Time
}

func NewService(prescriptions PrescriptionRepository, lab LabRepository, appts Appointments, policy *access.Policy) *Service {
	return &Service{
		prescriptions: prescriptions,
		lab:           lab,
		appts:         appts,
		policy:        policy,
		now:           time.Now,
	}
}

// -- Prescriptions --

// CreatePrescription writes the immutable prescription record. Only the
// doctor who owns the referenced appointment (or an admin) may issue one.
func (s *Service) CreatePrescription(ctx context.Context, actor access.Actor, req *CreatePrescriptionRequest) (*Prescription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	appt, err := s.appts.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	target := access.Target{StudentID: appt.StudentID, DoctorID: appt.DoctorID.String()}
	if err := s.policy.Authorize(actor, access.OpCreatePrescription, target); err != nil {
		return nil, err
	}

	p := &Prescription{
		AppointmentID:     appt.ID,
		StudentID:         appt.StudentID,
		DoctorID:          appt.DoctorID,
		DoctorName:        appt.DoctorName,
		Date:              appt.Date,
		Diagnosis:         req.Diagnosis,
		Medications:       req.Medications,
		Notes:             req.Notes,
		ReferToPharmacist: req.ReferToPharmacist,
		DispenseStatus:    DispenseNotApplicable,
	}
	if req.ReferToPharmacist {
		p.DispenseStatus = DispensePending
	}
	if err := s.prescriptions.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Dispense performs the single Pending→Dispensed transition. The state
// guards are re-checked by the repository's compare-and-swap, so two racing
// pharmacists cannot both succeed.
func (s *Service) Dispense(ctx context.Context, actor access.Actor, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, access.OpDispensePrescription, access.Target{}); err != nil {
		return nil, err
	}
	if !p.ReferToPharmacist {
		return nil, fmt.Errorf("%w: prescription %s", portalerr.ErrNotReferred, id)
	}
	if p.DispenseStatus == DispenseDispensed {
		return nil, fmt.Errorf("%w: prescription %s", portalerr.ErrAlreadyDispensed, id)
	}

	at := s.now().UTC()
	ok, err := s.prescriptions.MarkDispensed(ctx, id, actor.ID, at)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: prescription %s", portalerr.ErrAlreadyDispensed, id)
	}
	p.DispenseStatus = DispenseDispensed
	p.DispensedBy = &actor.ID
	p.DispensedAt = &at
	return p, nil
}

func (s *Service) GetPrescription(ctx context.Context, actor access.Actor, id uuid.UUID) (*Prescription, error) {
	p, err := s.prescriptions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{StudentID: p.StudentID}); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPrescriptionsByStudent(ctx context.Context, actor access.Actor, studentID string) ([]*Prescription, error) {
	if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	return s.prescriptions.ListByStudent(ctx, studentID)
}

// ListPendingPrescriptions is the pharmacist work queue.
func (s *Service) ListPendingPrescriptions(ctx context.Context, actor access.Actor) ([]*Prescription, error) {
	if err := s.policy.Authorize(actor, access.OpDispensePrescription, access.Target{}); err != nil {
		return nil, err
	}
	return s.prescriptions.ListPending(ctx)
}

func (s *Service) DispenseStats(ctx context.Context, actor access.Actor) (*DispenseStats, error) {
	if err := s.policy.Authorize(actor, access.OpDispensePrescription, access.Target{}); err != nil {
		return nil, err
	}
	return s.prescriptions.Stats(ctx)
}

// -- Lab orders --

func (s *Service) CreateLabOrder(ctx context.Context, actor access.Actor, req *CreateLabOrderRequest) (*LabOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	appt, err := s.appts.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	target := access.Target{StudentID: appt.StudentID, DoctorID: appt.DoctorID.String()}
	if err := s.policy.Authorize(actor, access.OpCreateLabOrder, target); err != nil {
		return nil, err
	}

	o := &LabOrder{
		AppointmentID: appt.ID,
		StudentID:     appt.StudentID,
		DoctorID:      appt.DoctorID,
		TestType:      req.TestType,
		Notes:         req.Notes,
	}
	if err := s.lab.CreateOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// CompleteLabOrder flips Pending→Completed and appends the LabReport in one
// atomic unit; a Completed order without its report cannot be observed.
func (s *Service) CompleteLabOrder(ctx context.Context, actor access.Actor, id uuid.UUID, fileRef, remarks string) (*LabOrder, *LabReport, error) {
	if fileRef == "" {
		return nil, nil, fmt.Errorf("%w: file_ref is required", portalerr.ErrValidation)
	}
	o, err := s.lab.GetOrderByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := s.policy.Authorize(actor, access.OpCompleteLabOrder, access.Target{}); err != nil {
		return nil, nil, err
	}
	if o.Status == OrderCompleted {
		return nil, nil, fmt.Errorf("%w: lab order %s", portalerr.ErrAlreadyCompleted, id)
	}

	at := s.now().UTC()
	o.Status = OrderCompleted
	o.ReportFileRef = &fileRef
	o.TechnicianID = &actor.ID
	o.Remarks = &remarks
	o.CompletedAt = &at

	report := &LabReport{
		OrderID:   o.ID,
		StudentID: o.StudentID,
		Date:      at.Format("2006-01-02"),
		TestName:  o.TestType,
		Remarks:   remarks,
		FileRef:   fileRef,
	}
	ok, err := s.lab.CompleteOrder(ctx, o, report)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("%w: lab order %s", portalerr.ErrAlreadyCompleted, id)
	}
	return o, report, nil
}

func (s *Service) ListLabOrdersByStudent(ctx context.Context, actor access.Actor, studentID string) ([]*LabOrder, error) {
	if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	return s.lab.ListOrdersByStudent(ctx, studentID)
}

// ListPendingLabOrders is the lab work queue.
func (s *Service) ListPendingLabOrders(ctx context.Context, actor access.Actor) ([]*LabOrder, error) {
	if err := s.policy.Authorize(actor, access.OpCompleteLabOrder, access.Target{}); err != nil {
		return nil, err
	}
	return s.lab.ListPendingOrders(ctx)
}

func (s *Service) ListLabReportsByStudent(ctx context.Context, actor access.Actor, studentID string) ([]*LabReport, error) {
	if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	return s.lab.ListReportsByStudent(ctx, studentID)
}

func (s *Service) LabStats(ctx context.Context, actor access.Actor) (*LabStats, error) {
	if err := s.policy.Authorize(actor, access.OpCompleteLabOrder, access.Target{}); err != nil {
		return nil, err
	}
	return s.lab.Stats(ctx)
}
