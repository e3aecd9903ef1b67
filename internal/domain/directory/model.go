package directory

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/portalerr"
)

// Doctor is the registry record slot generation reads. Working windows are
// local times of day ("HH:MM"); either window may be absent, and an absent
// window simply produces no slots. The portal operates on a single local
// calendar, so no timezone is attached.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	MorningStart   *string   `db:"morning_start" json:"morning_start,omitempty"`
	MorningEnd     *string   `db:"morning_end" json:"morning_end,omitempty"`
	EveningStart   *string   `db:"evening_start" json:"evening_start,omitempty"`
	EveningEnd     *string   `db:"evening_end" json:"evening_end,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

const (
	clockLayout = "15:04"
	dateLayout  = "2006-01-02"
)

// ParseClock validates an "HH:MM" time of day.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid time %q, want HH:MM", portalerr.ErrValidation, s)
	}
	return t, nil
}

// ParseDate validates a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", portalerr.ErrValidation, s)
	}
	return t, nil
}

// validateWindow checks that a working window is either fully absent or a
// well-formed half-open range.
func validateWindow(name string, start, end *string) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		return fmt.Errorf("%w: %s window needs both start and end", portalerr.ErrValidation, name)
	}
	s, err := ParseClock(*start)
	if err != nil {
		return err
	}
	e, err := ParseClock(*end)
	if err != nil {
		return err
	}
	if !s.Before(e) {
		return fmt.Errorf("%w: %s window start %s must precede end %s", portalerr.ErrValidation, name, *start, *end)
	}
	return nil
}

// Validate checks the registry invariants on a doctor record.
func (d *Doctor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: doctor name is required", portalerr.ErrValidation)
	}
	if err := validateWindow("morning", d.MorningStart, d.MorningEnd); err != nil {
		return err
	}
	return validateWindow("evening", d.EveningStart, d.EveningEnd)
}
