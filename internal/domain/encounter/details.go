package encounter

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/medmitra/api/internal/domain/patient"
	"github.com/medmitra/api/internal/domain/prescription"
	"github.com/medmitra/api/internal/domain/triage"
)

// Details is the full consultation view: the encounter with the patient,
// triage readings and stored prescription documents that belong to it.
type Details struct {
	Encounter     *Encounter                   `json:"encounter"`
	Patient       *patient.Patient             `json:"patient,omitempty"`
	Triage        *triage.Record               `json:"triage,omitempty"`
	Prescriptions []*prescription.Prescription `json:"prescriptions"`
}

// DetailsService assembles Details from the individual domain services.
// Triage and prescriptions are best effort; a consultation opened without a
// triage pass still renders.
type DetailsService struct {
	encounters    *Service
	patients      *patient.Service
	triage        *triage.Service
	prescriptions *prescription.Service
}

func NewDetailsService(encounters *Service, patients *patient.Service, tri *triage.Service, rx *prescription.Service) *DetailsService {
	return &DetailsService{
		encounters:    encounters,
		patients:      patients,
		triage:        tri,
		prescriptions: rx,
	}
}

func (s *DetailsService) Get(ctx context.Context, encounterID uuid.UUID) (*Details, error) {
	enc, err := s.encounters.Get(ctx, encounterID)
	if err != nil {
		return nil, err
	}

	d := &Details{Encounter: enc, Prescriptions: []*prescription.Prescription{}}

	if p, err := s.patients.GetPatient(ctx, enc.PatientID); err == nil {
		d.Patient = p
	} else if !errors.Is(err, patient.ErrNotFound) {
		return nil, err
	}

	if rec, err := s.triage.GetByAppointment(ctx, enc.AppointmentID); err == nil {
		d.Triage = rec
	} else if !errors.Is(err, triage.ErrNotFound) {
		return nil, err
	}

	if docs, err := s.prescriptions.ListByEncounter(ctx, enc.ID.String()); err == nil && docs != nil {
		d.Prescriptions = docs
	}

	return d, nil
}
