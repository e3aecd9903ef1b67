// Package access resolves which operations a caller may perform. Every
// mutation in the directory, scheduling and clinical services passes through
// Policy.Authorize before touching state.
package access

import (
	"fmt"

	"github.com/campushealth/portal/internal/portalerr"
)

// Role is the closed set of portal roles. Loose role strings from transport
// are parsed exactly once, at the auth boundary.
type Role string

const (
	RoleStudent    Role = "student"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
	RoleLabTech    Role = "lab_tech"
	RoleAdmin      Role = "admin"
)

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleDoctor, RolePharmacist, RoleLabTech, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", portalerr.ErrValidation, s)
}

// Actor is the authenticated caller. There is no ambient session state; an
// Actor is passed explicitly into every guarded call.
type Actor struct {
	ID   string
	Role Role
}

// Operation names a guarded mutation or read.
type Operation string

const (
	OpBookAppointment       Operation = "appointment.book"
	OpCancelAppointment     Operation = "appointment.cancel"
	OpHardDeleteAppointment Operation = "appointment.delete_hard"
	OpToggleOverride        Operation = "calendar.toggle_override"
	OpManageDoctors         Operation = "directory.manage_doctors"
	OpCreatePrescription    Operation = "prescription.create"
	OpDispensePrescription  Operation = "prescription.dispense"
	OpCreateLabOrder        Operation = "lab_order.create"
	OpCompleteLabOrder      Operation = "lab_order.complete"
	OpReadStudentRecords    Operation = "records.read"
	OpAuditLedger           Operation = "ledger.audit"
)

// Target carries the ownership facts a rule may consult. Fields that do not
// apply to an operation are left empty.
type Target struct {
	StudentID string // owning student of the record
	DoctorID  string // owning doctor of the record
}

// Policy is the rule table. It is stateless; construct once and share.
type Policy struct{}

func NewPolicy() *Policy { return &Policy{} }

// Authorize returns nil when actor may perform op on the target, or an error
// wrapping portalerr.ErrForbidden otherwise.
func (p *Policy) Authorize(actor Actor, op Operation, tgt Target) error {
	if allowed(actor, op, tgt) {
		return nil
	}
	return fmt.Errorf("%w: role %s may not perform %s", portalerr.ErrForbidden, actor.Role, op)
}

func allowed(actor Actor, op Operation, tgt Target) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	switch op {
	case OpBookAppointment:
		return actor.Role == RoleStudent && actor.ID == tgt.StudentID
	case OpCancelAppointment:
		return actor.Role == RoleStudent && actor.ID == tgt.StudentID
	case OpToggleOverride:
		return actor.Role == RoleDoctor && actor.ID == tgt.DoctorID
	case OpCreatePrescription, OpCreateLabOrder:
		return actor.Role == RoleDoctor && actor.ID == tgt.DoctorID
	case OpDispensePrescription:
		return actor.Role == RolePharmacist
	case OpCompleteLabOrder:
		return actor.Role == RoleLabTech
	case OpReadStudentRecords:
		switch actor.Role {
		case RoleStudent:
			return actor.ID == tgt.StudentID
		case RoleDoctor, RolePharmacist, RoleLabTech:
			return true
		}
	case OpHardDeleteAppointment, OpManageDoctors, OpAuditLedger:
		// Admin only; handled above.
	}
	return false
}
