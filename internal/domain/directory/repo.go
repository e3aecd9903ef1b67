package directory

import (
	"context"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)
}

// OverrideRepository stores the per-doctor set of unavailable dates. Dates
// are "YYYY-MM-DD" strings; the set is small (a leave calendar).
type OverrideRepository interface {
	Exists(ctx context.Context, doctorID uuid.UUID, date string) (bool, error)
	Add(ctx context.Context, doctorID uuid.UUID, date string) error
	Remove(ctx context.Context, doctorID uuid.UUID, date string) error
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]string, error)
}
