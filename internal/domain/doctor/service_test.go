package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medmitra/api/internal/domain/vitals"
)

type mockRepo struct {
	doctors map[uuid.UUID]*Doctor
	prefs   map[uuid.UUID]*Preference
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		doctors: make(map[uuid.UUID]*Doctor),
		prefs:   make(map[uuid.UUID]*Preference),
	}
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, ok := m.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var docs []*Doctor
	for _, d := range m.doctors {
		docs = append(docs, d)
	}
	return docs, len(docs), nil
}

func (m *mockRepo) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) Update(ctx context.Context, d *Doctor) error {
	if _, ok := m.doctors[d.ID]; !ok {
		return ErrNotFound
	}
	m.doctors[d.ID] = d
	return nil
}

func (m *mockRepo) GetPreference(ctx context.Context, doctorID uuid.UUID) (*Preference, error) {
	if p, ok := m.prefs[doctorID]; ok {
		return p, nil
	}
	return &Preference{DoctorID: doctorID}, nil
}

func (m *mockRepo) SavePreference(ctx context.Context, p *Preference) error {
	m.prefs[p.DoctorID] = p
	return nil
}

type mockVitalsRepo struct {
	defs []vitals.VitalDefinition
}

func (m *mockVitalsRepo) ListActive(ctx context.Context) ([]vitals.VitalDefinition, error) {
	return m.defs, nil
}
func (m *mockVitalsRepo) GetByKey(ctx context.Context, key string) (*vitals.VitalDefinition, error) {
	return nil, ErrNotFound
}
func (m *mockVitalsRepo) Create(ctx context.Context, v *vitals.VitalDefinition) error { return nil }
func (m *mockVitalsRepo) Update(ctx context.Context, v *vitals.VitalDefinition) error { return nil }
func (m *mockVitalsRepo) Deactivate(ctx context.Context, key string) error            { return nil }

func newService(t *testing.T, repo Repository, defs []vitals.VitalDefinition) *Service {
	t.Helper()
	vr := &mockVitalsRepo{defs: defs}
	resolver, err := vitals.NewResolver(vr, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	vs := vitals.NewService(vr, resolver, zerolog.Nop())
	return NewService(repo, vs, zerolog.Nop())
}

func testCatalog() []vitals.VitalDefinition {
	return []vitals.VitalDefinition{
		{Key: "bp", Name: "Blood Pressure", DisplayOrder: 1, IsActive: true},
		{Key: "pulse", Name: "Pulse Rate", DisplayOrder: 2, IsActive: true},
		{Key: "temp", Name: "Temperature", DisplayOrder: 3, IsActive: true},
	}
}

func TestCreateDoctor_Validation(t *testing.T) {
	svc := newService(t, newMockRepo(), testCatalog())

	err := svc.CreateDoctor(context.Background(), &Doctor{FullName: "Dr. Rao"})
	if err != ErrInvalidProfile {
		t.Errorf("err = %v, want ErrInvalidProfile", err)
	}

	err = svc.CreateDoctor(context.Background(), &Doctor{
		FullName:           "Dr. Rao",
		RegistrationNumber: "MH-12345",
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGetVitalsLayout_NoSavedPreference(t *testing.T) {
	repo := newMockRepo()
	svc := newService(t, repo, testCatalog())
	doc := &Doctor{FullName: "Dr. Rao", RegistrationNumber: "MH-12345"}
	if err := svc.CreateDoctor(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	layout, err := svc.GetVitalsLayout(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(layout.Vitals) != 3 {
		t.Fatalf("vitals len = %d, want 3", len(layout.Vitals))
	}
	if layout.Vitals[0].Key != "bp" {
		t.Errorf("first vital = %q, want bp (catalog order)", layout.Vitals[0].Key)
	}
}

func TestGetVitalsLayout_ReconcilesSavedOrder(t *testing.T) {
	repo := newMockRepo()
	svc := newService(t, repo, testCatalog())
	doc := &Doctor{FullName: "Dr. Rao", RegistrationNumber: "MH-12345"}
	if err := svc.CreateDoctor(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	err := svc.SavePreference(context.Background(), doc.ID, vitals.Preference{
		Order:   []string{"temp", "bp"},
		Enabled: []string{"temp", "bp"},
	})
	if err != nil {
		t.Fatal(err)
	}

	layout, err := svc.GetVitalsLayout(context.Background(), doc.ID)
	if err != nil {
		t.Fatal(err)
	}
	wantOrder := []string{"temp", "bp", "pulse"}
	for i, key := range wantOrder {
		if layout.Preference.Order[i] != key {
			t.Errorf("order[%d] = %q, want %q", i, layout.Preference.Order[i], key)
		}
	}
}

func TestSavePreference_UnknownDoctor(t *testing.T) {
	svc := newService(t, newMockRepo(), testCatalog())
	err := svc.SavePreference(context.Background(), uuid.New(), vitals.Preference{})
	if err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

type mockAppts struct {
	doctorByAppt map[uuid.UUID]uuid.UUID
	err          error
}

func (m *mockAppts) DoctorForAppointment(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	id, ok := m.doctorByAppt[appointmentID]
	if !ok {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func TestResolveAppointmentVitals_UsesDoctorLayout(t *testing.T) {
	repo := newMockRepo()
	svc := newService(t, repo, testCatalog())
	doc := &Doctor{FullName: "Dr. Rao", RegistrationNumber: "MH-12345"}
	if err := svc.CreateDoctor(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if err := svc.SavePreference(context.Background(), doc.ID, vitals.Preference{
		Order:   []string{"temp", "bp"},
		Enabled: []string{"temp", "bp"},
	}); err != nil {
		t.Fatal(err)
	}

	apptID := uuid.New()
	svc.SetAppointmentResolver(&mockAppts{doctorByAppt: map[uuid.UUID]uuid.UUID{apptID: doc.ID}})

	cfg := svc.ResolveAppointmentVitals(context.Background(), apptID)
	if cfg.DoctorName != "Dr. Rao" {
		t.Errorf("doctorName = %q", cfg.DoctorName)
	}
	// temp and bp enabled by the doctor, pulse appended enabled by default
	wantOrder := []string{"temp", "bp", "pulse"}
	if len(cfg.Vitals) != len(wantOrder) {
		t.Fatalf("vitals = %+v", cfg.Vitals)
	}
	for i, key := range wantOrder {
		if cfg.Vitals[i].Key != key {
			t.Errorf("vitals[%d] = %q, want %q", i, cfg.Vitals[i].Key, key)
		}
	}
}

func TestResolveAppointmentVitals_FallsBackSilently(t *testing.T) {
	svc := newService(t, newMockRepo(), testCatalog())
	svc.SetAppointmentResolver(&mockAppts{err: context.DeadlineExceeded})

	cfg := svc.ResolveAppointmentVitals(context.Background(), uuid.New())
	fallback := vitals.FallbackVitals()
	if len(cfg.Vitals) != len(fallback) {
		t.Fatalf("vitals len = %d, want the %d fallback entries", len(cfg.Vitals), len(fallback))
	}
	for i := range fallback {
		if cfg.Vitals[i].Key != fallback[i].Key {
			t.Errorf("vitals[%d] = %q, want %q", i, cfg.Vitals[i].Key, fallback[i].Key)
		}
	}
	if cfg.DoctorName != "" {
		t.Errorf("doctorName = %q, want empty on fallback", cfg.DoctorName)
	}
}

func TestResolveAppointmentVitals_NoResolverConfigured(t *testing.T) {
	svc := newService(t, newMockRepo(), testCatalog())
	cfg := svc.ResolveAppointmentVitals(context.Background(), uuid.New())
	if len(cfg.Vitals) != len(vitals.FallbackVitals()) {
		t.Errorf("expected fallback set, got %+v", cfg.Vitals)
	}
}
