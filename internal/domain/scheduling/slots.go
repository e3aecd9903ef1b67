package scheduling

import (
	"fmt"
	"time"

	"github.com/campushealth/portal/internal/domain/directory"
	"github.com/campushealth/portal/internal/portalerr"
)

const clockLayout = "15:04"

// SlotGenerator derives bookable times for a (doctor, date) pair. It owns no
// state beyond the step width; availability inputs come from the caller.
type SlotGenerator struct {
	step time.Duration
}

func NewSlotGenerator(stepMinutes int) *SlotGenerator {
	return &SlotGenerator{step: time.Duration(stepMinutes) * time.Minute}
}

// Generate expands the doctor's working windows into "HH:MM" slot starts and
// removes the booked ones. Windows are half-open: a slot exists when its
// start fits strictly before the window end, so a 09:00-13:00 window at 20
// minutes yields 09:00 through 12:40 and never 13:00. An unavailable date
// yields the empty list regardless of windows.
func (g *SlotGenerator) Generate(doc *directory.Doctor, unavailable bool, booked []string) ([]string, error) {
	if unavailable {
		return []string{}, nil
	}

	taken := make(map[string]bool, len(booked))
	for _, t := range booked {
		taken[t] = true
	}

	var slots []string
	for _, w := range [][2]*string{
		{doc.MorningStart, doc.MorningEnd},
		{doc.EveningStart, doc.EveningEnd},
	} {
		if w[0] == nil || w[1] == nil {
			continue
		}
		expanded, err := g.expand(*w[0], *w[1])
		if err != nil {
			return nil, err
		}
		for _, s := range expanded {
			if !taken[s] {
				slots = append(slots, s)
			}
		}
	}
	if slots == nil {
		slots = []string{}
	}
	return slots, nil
}

func (g *SlotGenerator) expand(start, end string) ([]string, error) {
	from, err := time.Parse(clockLayout, start)
	if err != nil {
		return nil, fmt.Errorf("%w: window start %q", portalerr.ErrValidation, start)
	}
	to, err := time.Parse(clockLayout, end)
	if err != nil {
		return nil, fmt.Errorf("%w: window end %q", portalerr.ErrValidation, end)
	}
	var out []string
	for t := from; t.Before(to); t = t.Add(g.step) {
		out = append(out, t.Format(clockLayout))
	}
	return out, nil
}

// Contains reports whether tm is one of the generated slots. Matching is by
// exact string: a request for an off-grid time never lines up with a slot
// and is rejected at booking.
func Contains(slots []string, tm string) bool {
	for _, s := range slots {
		if s == tm {
			return true
		}
	}
	return false
}
