package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestRelativeTime(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-time.Minute), "1 minute ago"},
		{now.Add(-45 * time.Minute), "45 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-30 * time.Hour), "yesterday"},
		{now.Add(-4 * 24 * time.Hour), "4 days ago"},
		{now.Add(-20 * 24 * time.Hour), "21 May 2024"},
		{now.Add(2 * time.Hour), "in 2 hours"},
		{now.Add(30 * time.Hour), "tomorrow"},
		{now.Add(3 * 24 * time.Hour), "in 3 days"},
	}
	for _, tc := range cases {
		if got := RelativeTime(now, tc.at); got != tc.want {
			t.Errorf("RelativeTime(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

type mockConsultations struct {
	items []ActivityItem
	err   error
}

func (m *mockConsultations) RecentConsultations(ctx context.Context, patientID uuid.UUID, limit int) ([]ActivityItem, error) {
	return m.items, m.err
}

func TestPatientActivity_MergesNewestFirst(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	svc.now = func() time.Time {
		return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	}
	patientID := uuid.New()

	repo.Create(context.Background(), &Appointment{
		PatientID: patientID, DoctorID: uuid.New(),
		ScheduledAt: "2024-06-09T10:00:00", Status: StatusCompleted, Reason: "follow-up",
	})
	svc.SetConsultationSource(&mockConsultations{items: []ActivityItem{{
		Type:       ActivityConsultation,
		Title:      "Consultation",
		Detail:     "fever",
		OccurredAt: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
	}}})

	items, err := svc.PatientActivity(context.Background(), patientID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Type != ActivityConsultation || items[1].Type != ActivityAppointment {
		t.Errorf("order = [%s, %s], want consultation first", items[0].Type, items[1].Type)
	}
	if items[0].RelativeTime != "3 hours ago" {
		t.Errorf("consultation label = %q", items[0].RelativeTime)
	}
	if items[1].RelativeTime != "yesterday" {
		t.Errorf("appointment label = %q", items[1].RelativeTime)
	}
}

func TestPatientActivity_ConsultationSourceFailureDegrades(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, zerolog.Nop())
	patientID := uuid.New()

	repo.Create(context.Background(), &Appointment{
		PatientID: patientID, DoctorID: uuid.New(),
		ScheduledAt: "2024-06-09T10:00:00", Status: StatusScheduled,
	})
	svc.SetConsultationSource(&mockConsultations{err: errors.New("down")})

	items, err := svc.PatientActivity(context.Background(), patientID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Type != ActivityAppointment {
		t.Errorf("expected an appointments-only feed, got %v", items)
	}
}
