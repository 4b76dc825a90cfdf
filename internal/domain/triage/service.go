package triage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrEmptyVitals       = errors.New("at least one vital reading is required")
	ErrInvalidPayment    = errors.New("invalid payment mode or status")
	ErrRecordFrozen      = errors.New("triage record is frozen after handover")
	ErrVitalsIncomplete  = errors.New("vitals must be completed before sending to doctor")
	ErrPaymentIncomplete = errors.New("payment must be completed before sending to doctor")
	ErrAlreadySent       = errors.New("patient already sent to doctor")
)

// AppointmentGateway moves the underlying appointment along its lifecycle
// when triage hands the patient over.
type AppointmentGateway interface {
	MarkWithDoctor(ctx context.Context, appointmentID uuid.UUID) error
}

type Service struct {
	repo   Repository
	appts  AppointmentGateway
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, appts AppointmentGateway, logger zerolog.Logger) *Service {
	return &Service{repo: repo, appts: appts, logger: logger, now: time.Now}
}

// Open returns the triage record for an appointment, creating it on first
// access.
func (s *Service) Open(ctx context.Context, appointmentID, patientID, doctorID uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	rec = &Record{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		DoctorID:      doctorID,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating triage record: %w", err)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Record, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}

// SaveVitals normalizes and stores the captured readings. A submission with
// no usable reading is rejected so the completed flag can never be set by an
// empty form. Once the patient is handed over the record is frozen and the
// readings become consultation history.
func (s *Service) SaveVitals(ctx context.Context, id uuid.UUID, raw map[string]string) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.SentToDoctor {
		return nil, ErrRecordFrozen
	}
	normalized := NormalizeVitals(raw)
	if len(normalized) == 0 {
		return nil, ErrEmptyVitals
	}
	rec.Vitals = normalized
	rec.VitalsCompleted = true
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SavePayment records the desk payment. The charged amount is the
// consultation fee plus additional charges, kept as a formatted string.
// Status is optional on the form and defaults to paid, the common case at
// the desk. Frozen records reject payment edits like vitals edits.
func (s *Service) SavePayment(ctx context.Context, id uuid.UUID, req PaymentRequest) (*Record, error) {
	if req.Status == "" {
		req.Status = PaymentPaid
	}
	if !ValidPaymentMode(req.Mode) || !ValidPaymentStatus(req.Status) {
		return nil, ErrInvalidPayment
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.SentToDoctor {
		return nil, ErrRecordFrozen
	}
	rec.PaymentMode = req.Mode
	rec.PaymentStatus = req.Status
	rec.PaymentAmount = fmt.Sprintf("%.2f", req.ConsultationFee+req.AdditionalCharges)
	rec.PaymentCompleted = true
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// SendToDoctor hands the patient over. Both vitals and payment must be
// completed first; the handover is recorded once.
func (s *Service) SendToDoctor(ctx context.Context, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.SentToDoctor {
		return nil, ErrAlreadySent
	}
	if !rec.VitalsCompleted {
		return nil, ErrVitalsIncomplete
	}
	if !rec.PaymentCompleted {
		return nil, ErrPaymentIncomplete
	}

	now := s.now()
	rec.SentToDoctor = true
	rec.SentAt = &now
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	if s.appts != nil {
		if err := s.appts.MarkWithDoctor(ctx, rec.AppointmentID); err != nil {
			s.logger.Error().Err(err).
				Str("appointment_id", rec.AppointmentID.String()).
				Msg("appointment handover status update failed")
		}
	}
	s.logger.Info().
		Str("triage_id", rec.ID.String()).
		Str("patient_id", rec.PatientID.String()).
		Msg("patient sent to doctor")
	return rec, nil
}

func (s *Service) PendingForDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListPending(ctx, doctorID, limit, offset)
}
