package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/campushealth/portal/internal/access"
	"github.com/campushealth/portal/internal/portalerr"
)

// -- Mock Repositories --

type mockDoctorRepo struct {
	mu      sync.Mutex
	doctors map[uuid.UUID]*Doctor
}

func newMockDoctorRepo() *mockDoctorRepo {
	return &mockDoctorRepo{doctors: make(map[uuid.UUID]*Doctor)}
}

func (m *mockDoctorRepo) Create(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) GetByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.doctors[id]
	if !ok {
		return nil, fmt.Errorf("%w: doctor", portalerr.ErrNotFound)
	}
	return d, nil
}

func (m *mockDoctorRepo) Update(_ context.Context, d *Doctor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.doctors, id)
	return nil
}

func (m *mockDoctorRepo) List(_ context.Context, limit, offset int) ([]*Doctor, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*Doctor
	for _, d := range m.doctors {
		result = append(result, d)
	}
	return result, len(result), nil
}

type mockOverrideRepo struct {
	mu    sync.Mutex
	dates map[string]bool // key doctorID|date
}

func newMockOverrideRepo() *mockOverrideRepo {
	return &mockOverrideRepo{dates: make(map[string]bool)}
}

func key(doctorID uuid.UUID, date string) string { return doctorID.String() + "|" + date }

func (m *mockOverrideRepo) Exists(_ context.Context, doctorID uuid.UUID, date string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dates[key(doctorID, date)], nil
}

func (m *mockOverrideRepo) Add(_ context.Context, doctorID uuid.UUID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dates[key(doctorID, date)] = true
	return nil
}

func (m *mockOverrideRepo) Remove(_ context.Context, doctorID uuid.UUID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.dates, key(doctorID, date))
	return nil
}

func (m *mockOverrideRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var dates []string
	prefix := doctorID.String() + "|"
	for k, v := range m.dates {
		if v && len(k) > len(prefix) && k[:len(prefix)] == prefix {
			dates = append(dates, k[len(prefix):])
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func strPtr(s string) *string { return &s }

func newTestService() (*Service, *Doctor) {
	doctors := newMockDoctorRepo()
	svc := NewService(doctors, newMockOverrideRepo(), access.NewPolicy())
	doc := &Doctor{
		Name:           "Dr. Meena Rao",
		Specialization: "General Medicine",
		MorningStart:   strPtr("09:00"),
		MorningEnd:     strPtr("13:00"),
		EveningStart:   strPtr("17:00"),
		EveningEnd:     strPtr("21:00"),
	}
	doctors.Create(context.Background(), doc)
	return svc, doc
}

var adminActor = access.Actor{ID: "adm-1", Role: access.RoleAdmin}

func TestToggle_RoundTrip(t *testing.T) {
	svc, doc := newTestService()
	ctx := context.Background()

	action, err := svc.Toggle(ctx, adminActor, doc.ID, "2025-03-11")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if action != ActionAdded {
		t.Errorf("first toggle action = %q, want added", action)
	}
	if un, _ := svc.IsUnavailable(ctx, doc.ID, "2025-03-11"); !un {
		t.Error("date should be unavailable after first toggle")
	}

	action, err = svc.Toggle(ctx, adminActor, doc.ID, "2025-03-11")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if action != ActionRemoved {
		t.Errorf("second toggle action = %q, want removed", action)
	}
	if un, _ := svc.IsUnavailable(ctx, doc.ID, "2025-03-11"); un {
		t.Error("date should be available again after second toggle")
	}
}

func TestToggle_UnknownDoctor(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Toggle(context.Background(), adminActor, uuid.New(), "2025-03-11")
	if !errors.Is(err, portalerr.ErrNotFound) {
		t.Errorf("got %v, want not found", err)
	}
}

func TestToggle_InvalidDate(t *testing.T) {
	svc, doc := newTestService()
	_, err := svc.Toggle(context.Background(), adminActor, doc.ID, "11-03-2025")
	if !errors.Is(err, portalerr.ErrValidation) {
		t.Errorf("got %v, want validation error", err)
	}
}

func TestToggle_DoctorOwnCalendarOnly(t *testing.T) {
	svc, doc := newTestService()
	ctx := context.Background()

	self := access.Actor{ID: doc.ID.String(), Role: access.RoleDoctor}
	if _, err := svc.Toggle(ctx, self, doc.ID, "2025-03-12"); err != nil {
		t.Errorf("doctor denied own toggle: %v", err)
	}

	other := access.Actor{ID: uuid.New().String(), Role: access.RoleDoctor}
	if _, err := svc.Toggle(ctx, other, doc.ID, "2025-03-12"); !errors.Is(err, portalerr.ErrForbidden) {
		t.Errorf("got %v, want forbidden", err)
	}
}

func TestToggle_ConcurrentSerializes(t *testing.T) {
	svc, doc := newTestService()
	ctx := context.Background()
	const n = 20 // even, so the set must return to its original state

	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			action, err := svc.Toggle(ctx, adminActor, doc.ID, "2025-04-01")
			if err != nil {
				t.Errorf("toggle: %v", err)
				return
			}
			results <- action
		}()
	}
	wg.Wait()
	close(results)

	added, removed := 0, 0
	for a := range results {
		switch a {
		case ActionAdded:
			added++
		case ActionRemoved:
			removed++
		}
	}
	if added != removed {
		t.Errorf("added=%d removed=%d, want equal counts", added, removed)
	}
	if un, _ := svc.IsUnavailable(ctx, doc.ID, "2025-04-01"); un {
		t.Error("override set should be back to original state after even toggles")
	}
}

func TestListUnavailable(t *testing.T) {
	svc, doc := newTestService()
	ctx := context.Background()

	svc.Toggle(ctx, adminActor, doc.ID, "2025-03-12")
	svc.Toggle(ctx, adminActor, doc.ID, "2025-03-10")

	dates, err := svc.ListUnavailable(ctx, doc.ID)
	if err != nil {
		t.Fatalf("ListUnavailable: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2025-03-10" || dates[1] != "2025-03-12" {
		t.Errorf("dates = %v, want ascending pair", dates)
	}

	if _, err := svc.ListUnavailable(ctx, uuid.New()); !errors.Is(err, portalerr.ErrNotFound) {
		t.Errorf("unknown doctor: got %v, want not found", err)
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name string
		doc  Doctor
	}{
		{"missing name", Doctor{Specialization: "ENT"}},
		{"half window", Doctor{Name: "Dr. X", MorningStart: strPtr("09:00")}},
		{"inverted window", Doctor{Name: "Dr. X", MorningStart: strPtr("13:00"), MorningEnd: strPtr("09:00")}},
		{"bad clock", Doctor{Name: "Dr. X", MorningStart: strPtr("9am"), MorningEnd: strPtr("13:00")}},
	}
	for _, tc := range cases {
		d := tc.doc
		if err := svc.CreateDoctor(ctx, adminActor, &d); !errors.Is(err, portalerr.ErrValidation) {
			t.Errorf("%s: got %v, want validation error", tc.name, err)
		}
	}
}

func TestCreateDoctor_AdminOnly(t *testing.T) {
	svc, _ := newTestService()
	d := Doctor{Name: "Dr. Y"}
	student := access.Actor{ID: "s1", Role: access.RoleStudent}
	if err := svc.CreateDoctor(context.Background(), student, &d); !errors.Is(err, portalerr.ErrForbidden) {
		t.Errorf("got %v, want forbidden", err)
	}
}

func TestCreateDoctor_MorningOnlyWindow(t *testing.T) {
	svc, _ := newTestService()
	d := Doctor{Name: "Dr. Half-Day", MorningStart: strPtr("08:00"), MorningEnd: strPtr("12:00")}
	if err := svc.CreateDoctor(context.Background(), adminActor, &d); err != nil {
		t.Errorf("morning-only doctor rejected: %v", err)
	}
}
