package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrMissingParty      = errors.New("patient and doctor are required")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Service struct {
	repo          Repository
	consultations ConsultationSource
	logger        zerolog.Logger
	now           func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Book creates an appointment from the booking form. The desk enters a day
// and a 12-hour clock reading; both are combined into the stored timestamp.
func (s *Service) Book(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return nil, ErrMissingParty
	}
	scheduledAt, err := CombineDateTime(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	a := &Appointment{
		PatientID:   req.PatientID,
		DoctorID:    req.DoctorID,
		ScheduledAt: scheduledAt,
		Status:      StatusScheduled,
		Type:        req.AppointmentType,
		Reason:      req.Reason,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("creating appointment: %w", err)
	}
	s.logger.Info().
		Str("appointment_id", a.ID.String()).
		Str("scheduled_at", a.ScheduledAt).
		Msg("appointment booked")
	return a, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(a.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.Status, status)
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	a.Status = status
	return a, nil
}

func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID, day string, limit, offset int) ([]*Appointment, int, error) {
	if day != "" {
		if _, err := time.Parse("2006-01-02", day); err != nil {
			return nil, 0, ErrBadDate
		}
	}
	return s.repo.ListByDoctor(ctx, doctorID, day, limit, offset)
}

func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

// NextAppointment returns the patient's next upcoming appointment, or
// ErrNotFound when nothing is scheduled.
func (s *Service) NextAppointment(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	after := s.now().Format("2006-01-02T15:04:05")
	return s.repo.NextForPatient(ctx, patientID, after)
}
