package appointment

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type mockRepo struct {
	appts map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appts: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (m *mockRepo) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	m.appts[a.ID] = a
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	a, ok := m.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	return nil
}

func (m *mockRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID, day string, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	var out []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) NextForPatient(ctx context.Context, patientID uuid.UUID, after string) (*Appointment, error) {
	var candidates []*Appointment
	for _, a := range m.appts {
		if a.PatientID == patientID && a.ScheduledAt >= after &&
			a.Status != StatusCompleted && a.Status != StatusCancelled {
			candidates = append(candidates, a)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ScheduledAt < candidates[j].ScheduledAt
	})
	return candidates[0], nil
}

func TestBook(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	a, err := svc.Book(context.Background(), BookingRequest{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		Date:            "2024-06-01",
		Time:            "02:30 PM",
		AppointmentType: "Follow-up",
		Reason:          "follow-up",
	})
	if err != nil {
		t.Fatal(err)
	}
	if a.ScheduledAt != "2024-06-01T14:30:00" {
		t.Errorf("scheduledAt = %q", a.ScheduledAt)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", a.Status)
	}
	if a.Type != "Follow-up" {
		t.Errorf("type = %q, want Follow-up", a.Type)
	}
}

func TestBook_Invalid(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())

	_, err := svc.Book(context.Background(), BookingRequest{Date: "2024-06-01", Time: "02:30 PM"})
	if !errors.Is(err, ErrMissingParty) {
		t.Errorf("missing party: err = %v", err)
	}

	_, err = svc.Book(context.Background(), BookingRequest{
		PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2024-06-01", Time: "14:30",
	})
	if !errors.Is(err, ErrBadClock) {
		t.Errorf("bad clock: err = %v", err)
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	a, err := svc.Book(context.Background(), BookingRequest{
		PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2024-06-01", Time: "10:00 AM",
	})
	if err != nil {
		t.Fatal(err)
	}

	for _, status := range []string{StatusCheckedIn, StatusInTriage, StatusWithDoctor, StatusCompleted} {
		if _, err := svc.UpdateStatus(context.Background(), a.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	// Completed is terminal.
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusCancelled); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatus_SkippingStagesRejected(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	a, err := svc.Book(context.Background(), BookingRequest{
		PatientID: uuid.New(), DoctorID: uuid.New(), Date: "2024-06-01", Time: "10:00 AM",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusWithDoctor); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestNextAppointment(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	}
	patientID := uuid.New()

	for _, at := range []string{"2024-05-20T10:00:00", "2024-06-02T11:00:00", "2024-06-01T10:00:00"} {
		repo.Create(context.Background(), &Appointment{
			PatientID: patientID, DoctorID: uuid.New(), ScheduledAt: at, Status: StatusScheduled,
		})
	}

	next, err := svc.NextAppointment(context.Background(), patientID)
	if err != nil {
		t.Fatal(err)
	}
	if next.ScheduledAt != "2024-06-01T10:00:00" {
		t.Errorf("next = %q, want 2024-06-01T10:00:00", next.ScheduledAt)
	}
}

func TestNextAppointment_NoneScheduled(t *testing.T) {
	svc := NewService(newMockRepo(), zerolog.Nop())
	if _, err := svc.NextAppointment(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
