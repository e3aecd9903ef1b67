package clinical

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// MarkDispensed flips Pending→Dispensed and reports whether a row
	// transitioned. false means another dispense won the race.
	MarkDispensed(ctx context.Context, id uuid.UUID, pharmacistID string, at time.Time) (bool, error)
	// ListByStudent is newest-first (date descending).
	ListByStudent(ctx context.Context, studentID string) ([]*Prescription, error)
	// ListPending is the pharmacist work queue, oldest first.
	ListPending(ctx context.Context) ([]*Prescription, error)
	Stats(ctx context.Context) (*DispenseStats, error)
}

type LabRepository interface {
	CreateOrder(ctx context.Context, o *LabOrder) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*LabOrder, error)
	// CompleteOrder performs the Pending→Completed transition and the
	// report append as one atomic unit. A false return means the order was
	// not Pending and nothing was written.
	CompleteOrder(ctx context.Context, o *LabOrder, report *LabReport) (bool, error)
	ListOrdersByStudent(ctx context.Context, studentID string) ([]*LabOrder, error)
	// ListPendingOrders is the lab work queue, oldest first.
	ListPendingOrders(ctx context.Context) ([]*LabOrder, error)
	ListReportsByStudent(ctx context.Context, studentID string) ([]*LabReport, error)
	Stats(ctx context.Context) (*LabStats, error)
}
