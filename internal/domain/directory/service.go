package directory

import (
	"context"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/access"
	"github.com/campushealth/portal/internal/platform/keylock"
)

// Toggle outcomes, reported to the caller so the UI can confirm what
// actually happened.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

type Service struct {
	doctors   DoctorRepository
	overrides OverrideRepository
	policy    *access.Policy
	locks     *keylock.KeyLock
}

func NewService(doctors DoctorRepository, overrides OverrideRepository, policy *access.Policy) *Service {
	return &Service{
		doctors:   doctors,
		overrides: overrides,
		policy:    policy,
		locks:     keylock.New(),
	}
}

// -- Doctor registry --

func (s *Service) CreateDoctor(ctx context.Context, actor access.Actor, d *Doctor) error {
	if err := s.policy.Authorize(actor, access.OpManageDoctors, access.Target{}); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.doctors.List(ctx, limit, offset)
}

func (s *Service) UpdateDoctor(ctx context.Context, actor access.Actor, d *Doctor) error {
	if err := s.policy.Authorize(actor, access.OpManageDoctors, access.Target{}); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if _, err := s.doctors.GetByID(ctx, d.ID); err != nil {
		return err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	if err := s.policy.Authorize(actor, access.OpManageDoctors, access.Target{}); err != nil {
		return err
	}
	if _, err := s.doctors.GetByID(ctx, id); err != nil {
		return err
	}
	return s.doctors.Delete(ctx, id)
}

// -- Calendar overrides --

// IsUnavailable reports whether the doctor has marked the date off. Read
// side of slot generation; runs unsynchronized with toggles.
func (s *Service) IsUnavailable(ctx context.Context, doctorID uuid.UUID, date string) (bool, error) {
	return s.overrides.Exists(ctx, doctorID, date)
}

// Toggle flips the override for (doctor, date) and reports the transition
// actually applied. Concurrent toggles on the same key serialize on the
// keylock, so the reported action is never stale.
func (s *Service) Toggle(ctx context.Context, actor access.Actor, doctorID uuid.UUID, date string) (string, error) {
	if _, err := ParseDate(date); err != nil {
		return "", err
	}
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return "", err
	}
	if err := s.policy.Authorize(actor, access.OpToggleOverride, access.Target{DoctorID: doctorID.String()}); err != nil {
		return "", err
	}

	unlock := s.locks.Lock(doctorID.String() + "|" + date)
	defer unlock()

	present, err := s.overrides.Exists(ctx, doctorID, date)
	if err != nil {
		return "", err
	}
	if present {
		if err := s.overrides.Remove(ctx, doctorID, date); err != nil {
			return "", err
		}
		return ActionRemoved, nil
	}
	if err := s.overrides.Add(ctx, doctorID, date); err != nil {
		return "", err
	}
	return ActionAdded, nil
}

// ListUnavailable returns the doctor's override dates, ascending.
func (s *Service) ListUnavailable(ctx context.Context, doctorID uuid.UUID) ([]string, error) {
	if _, err := s.doctors.GetByID(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.overrides.ListByDoctor(ctx, doctorID)
}
