package doctor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medmitra/api/internal/domain/vitals"
)

var ErrInvalidProfile = errors.New("full name and registration number are required")

// AppointmentResolver maps an appointment to the doctor it belongs to.
type AppointmentResolver interface {
	DoctorForAppointment(ctx context.Context, appointmentID uuid.UUID) (uuid.UUID, error)
}

type Service struct {
	repo   Repository
	vitals *vitals.Service
	appts  AppointmentResolver
	logger zerolog.Logger
}

func NewService(repo Repository, vitalsSvc *vitals.Service, logger zerolog.Logger) *Service {
	return &Service{repo: repo, vitals: vitalsSvc, logger: logger}
}

// SetAppointmentResolver wires appointment lookups after construction, since
// the appointment service is built later in startup.
func (s *Service) SetAppointmentResolver(r AppointmentResolver) {
	s.appts = r
}

func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.FullName == "" || d.RegistrationNumber == "" {
		return ErrInvalidProfile
	}
	return s.repo.Create(ctx, d)
}

func (s *Service) UpdateProfile(ctx context.Context, d *Doctor) error {
	if d.FullName == "" || d.RegistrationNumber == "" {
		return ErrInvalidProfile
	}
	return s.repo.Update(ctx, d)
}

// VitalsLayout is the reconciled triage pad layout for a doctor: the saved
// preference merged with the live catalog, plus the ordered definitions the
// capture form should render.
type VitalsLayout struct {
	Preference vitals.Preference        `json:"preference"`
	Vitals     []vitals.VitalDefinition `json:"vitals"`
}

func (s *Service) GetVitalsLayout(ctx context.Context, doctorID uuid.UUID) (*VitalsLayout, error) {
	pref, err := s.repo.GetPreference(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	reconciled, defs := s.vitals.ResolveForPreference(ctx, pref.Vitals)
	return &VitalsLayout{Preference: reconciled, Vitals: defs}, nil
}

// AppointmentVitalsConfig is what the triage capture form renders for an
// appointment: the doctor's ordered, enabled vitals plus the doctor's name
// for the form header.
type AppointmentVitalsConfig struct {
	DoctorID   uuid.UUID                `json:"doctorId,omitempty"`
	DoctorName string                   `json:"doctorName,omitempty"`
	Vitals     []vitals.VitalDefinition `json:"vitalsConfig"`
}

// ResolveAppointmentVitals resolves the capture layout for an appointment's
// doctor. Any failure along the way degrades to the fixed fallback set; the
// coordinator always gets a usable form and the cause is only logged.
func (s *Service) ResolveAppointmentVitals(ctx context.Context, appointmentID uuid.UUID) *AppointmentVitalsConfig {
	if s.appts == nil {
		s.logger.Warn().Msg("appointment resolver not configured, using fallback vitals")
		return &AppointmentVitalsConfig{Vitals: vitals.FallbackVitals()}
	}
	doctorID, err := s.appts.DoctorForAppointment(ctx, appointmentID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("appointment_id", appointmentID.String()).
			Msg("appointment lookup failed, using fallback vitals")
		return &AppointmentVitalsConfig{Vitals: vitals.FallbackVitals()}
	}
	doc, err := s.repo.GetByID(ctx, doctorID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("doctor_id", doctorID.String()).
			Msg("doctor lookup failed, using fallback vitals")
		return &AppointmentVitalsConfig{DoctorID: doctorID, Vitals: vitals.FallbackVitals()}
	}
	layout, err := s.GetVitalsLayout(ctx, doctorID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("doctor_id", doctorID.String()).
			Msg("preference lookup failed, using fallback vitals")
		return &AppointmentVitalsConfig{DoctorID: doctorID, DoctorName: doc.FullName, Vitals: vitals.FallbackVitals()}
	}
	return &AppointmentVitalsConfig{
		DoctorID:   doctorID,
		DoctorName: doc.FullName,
		Vitals:     layout.Vitals,
	}
}

// SavePreference persists the layout exactly as the doctor arranged it.
// Unknown keys are dropped on the next read, not on write, so a catalog
// outage never destroys a saved layout.
func (s *Service) SavePreference(ctx context.Context, doctorID uuid.UUID, pref vitals.Preference) error {
	if _, err := s.repo.GetByID(ctx, doctorID); err != nil {
		return err
	}
	return s.repo.SavePreference(ctx, &Preference{DoctorID: doctorID, Vitals: pref})
}
