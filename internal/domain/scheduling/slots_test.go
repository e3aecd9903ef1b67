package scheduling

import (
	"reflect"
	"testing"

	"github.com/campushealth/portal/internal/domain/directory"
)

func strPtr(s string) *string { return &s }

func twoWindowDoctor() *directory.Doctor {
	return &directory.Doctor{
		Name:         "Dr. Meena Rao",
		MorningStart: strPtr("09:00"),
		MorningEnd:   strPtr("13:00"),
		EveningStart: strPtr("17:00"),
		EveningEnd:   strPtr("21:00"),
	}
}

func TestGenerate_HalfOpenWindows(t *testing.T) {
	g := NewSlotGenerator(20)
	slots, err := g.Generate(twoWindowDoctor(), false, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	// 4h at 20m = 12 per window; window ends are excluded.
	if len(slots) != 24 {
		t.Fatalf("got %d slots, want 24", len(slots))
	}
	if slots[0] != "09:00" || slots[11] != "12:40" {
		t.Errorf("morning run = %s..%s, want 09:00..12:40", slots[0], slots[11])
	}
	if slots[12] != "17:00" || slots[23] != "20:40" {
		t.Errorf("evening run = %s..%s, want 17:00..20:40", slots[12], slots[23])
	}
	for _, s := range slots {
		if s == "13:00" || s == "21:00" {
			t.Errorf("window end %s leaked into slots", s)
		}
	}
}

func TestGenerate_MorningOnly(t *testing.T) {
	g := NewSlotGenerator(30)
	doc := &directory.Doctor{Name: "Dr. Half-Day", MorningStart: strPtr("08:00"), MorningEnd: strPtr("10:00")}
	slots, err := g.Generate(doc, false, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	want := []string{"08:00", "08:30", "09:00", "09:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("slots = %v, want %v", slots, want)
	}
}

func TestGenerate_NoWindows(t *testing.T) {
	g := NewSlotGenerator(20)
	slots, err := g.Generate(&directory.Doctor{Name: "Dr. Off-Rota"}, false, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("windowless doctor produced %v", slots)
	}
}

func TestGenerate_UnavailableDateIsEmpty(t *testing.T) {
	g := NewSlotGenerator(20)
	slots, err := g.Generate(twoWindowDoctor(), true, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("unavailable date: got %v, want empty non-nil list", slots)
	}
}

func TestGenerate_BookedExcludedByExactMatch(t *testing.T) {
	g := NewSlotGenerator(20)

	slots, err := g.Generate(twoWindowDoctor(), false, []string{"09:20", "17:00"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(slots) != 22 {
		t.Errorf("got %d slots, want 22", len(slots))
	}
	if Contains(slots, "09:20") || Contains(slots, "17:00") {
		t.Error("booked times still offered")
	}

	// An off-grid booked time matches no slot string, so nothing drops out.
	slots, err = g.Generate(twoWindowDoctor(), false, []string{"09:10"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(slots) != 24 {
		t.Errorf("off-grid exclusion removed slots: got %d, want 24", len(slots))
	}
}
