package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/access"
	"github.com/campushealth/portal/internal/domain/directory"
	"github.com/campushealth/portal/internal/platform/keylock"
	"github.com/campushealth/portal/internal/portalerr"
)

// Directory is the slice of the doctor registry that slot generation needs.
// *directory.Service satisfies it.
type Directory interface {
	GetDoctor(ctx context.Context, id uuid.UUID) (*directory.Doctor, error)
	IsUnavailable(ctx context.Context, doctorID uuid.UUID, date string) (bool, error)
}

type Service struct {
	appts     AppointmentRepository
	directory Directory
	policy    *access.Policy
	slots     *SlotGenerator
	locks     *keylock.KeyLock
}

func NewService(appts AppointmentRepository, dir Directory, policy *access.Policy, slotMinutes int) *Service {
	return &Service{
		appts:     appts,
		directory: dir,
		policy:    policy,
		slots:     NewSlotGenerator(slotMinutes),
		locks:     keylock.New(),
	}
}

// Slots returns the open "HH:MM" starts for the doctor on the date. The read
// is unsynchronized with concurrent bookings; a stale slot resolves to a
// conflict at book time, never to a double booking.
func (s *Service) Slots(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	if _, err := directory.ParseDate(date); err != nil {
		return nil, err
	}
	doc, err := s.directory.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return s.openSlots(ctx, doc, date)
}

func (s *Service) openSlots(ctx context.Context, doc *directory.Doctor, date string) ([]string, error) {
	unavailable, err := s.directory.IsUnavailable(ctx, doc.ID, date)
	if err != nil {
		return nil, err
	}
	booked, err := s.appts.ListBookedTimes(ctx, doc.ID, date)
	if err != nil {
		return nil, err
	}
	return s.slots.Generate(doc, unavailable, booked)
}

// Book claims a slot for the student. The critical section recomputes the
// open slots under the (doctor, date) key lock, so within one process at
// most one of N identical requests sees the slot open; the partial unique
// index backs that up across processes.
func (s *Service) Book(ctx context.Context, actor access.Actor, req *BookRequest) (*Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, access.OpBookAppointment, access.Target{StudentID: req.StudentID}); err != nil {
		return nil, err
	}
	doc, err := s.directory.GetDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(req.DoctorID.String() + "|" + req.Date)
	defer unlock()

	open, err := s.openSlots(ctx, doc, req.Date)
	if err != nil {
		return nil, err
	}
	if !Contains(open, req.Time) {
		return nil, fmt.Errorf("%w: %s %s with doctor %s", portalerr.ErrSlotConflict, req.Date, req.Time, doc.Name)
	}

	a := &Appointment{
		StudentID:   req.StudentID,
		StudentName: req.StudentName,
		DoctorID:    doc.ID,
		DoctorName:  doc.Name,
		Date:        req.Date,
		Time:        req.Time,
		Reason:      req.Reason,
	}
	if err := s.appts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel flips a Booked appointment to Cancelled and frees its slot.
// Clinical records created during the visit are untouched.
func (s *Service) Cancel(ctx context.Context, actor access.Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	target := access.Target{StudentID: a.StudentID, DoctorID: a.DoctorID.String()}
	if err := s.policy.Authorize(actor, access.OpCancelAppointment, target); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(a.SlotKey())
	defer unlock()

	transitioned, err := s.appts.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}
	if !transitioned {
		return nil, fmt.Errorf("%w: appointment %s", portalerr.ErrAlreadyCancelled, id)
	}
	a.Status = StatusCancelled
	return a, nil
}

// Get fetches one appointment with a record-level read check: students see
// their own, doctors theirs, staff everything.
func (s *Service) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{StudentID: a.StudentID}); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListByDoctor(ctx context.Context, actor access.Actor, doctorID uuid.UUID) ([]*Appointment, error) {
	if actor.Role != access.RoleDoctor || actor.ID != doctorID.String() {
		if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{}); err != nil {
			return nil, err
		}
	}
	return s.appts.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListByStudent(ctx context.Context, actor access.Actor, studentID string) ([]*Appointment, error) {
	if err := s.policy.Authorize(actor, access.OpReadStudentRecords, access.Target{StudentID: studentID}); err != nil {
		return nil, err
	}
	return s.appts.ListByStudent(ctx, studentID)
}

func (s *Service) ListAll(ctx context.Context, actor access.Actor, limit, offset int) ([]*Appointment, int, error) {
	if err := s.policy.Authorize(actor, access.OpAuditLedger, access.Target{}); err != nil {
		return nil, 0, err
	}
	return s.appts.ListAll(ctx, limit, offset)
}

// DeleteHard removes the row outright. Admin correction path only; the
// normal flow always cancels.
func (s *Service) DeleteHard(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.policy.Authorize(actor, access.OpHardDeleteAppointment, access.Target{}); err != nil {
		return err
	}
	if _, err := s.appts.GetByID(ctx, id); err != nil {
		return err
	}
	return s.appts.DeleteHard(ctx, id)
}
