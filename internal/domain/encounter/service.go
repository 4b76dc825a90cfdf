package encounter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medmitra/api/pkg/reorder"
)

var (
	ErrMissingComplaint   = errors.New("chief complaint is required")
	ErrAlreadyFinalized   = errors.New("encounter is already finalized")
	ErrNotDraft           = errors.New("encounter is not a draft")
	ErrIndexOutOfRange    = errors.New("list index out of range")
	ErrMissingIdempotency = errors.New("idempotency key is required")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// OpenDraft returns the draft for an appointment, creating it on first
// access.
func (s *Service) OpenDraft(ctx context.Context, appointmentID, patientID, doctorID uuid.UUID) (*Encounter, error) {
	enc, err := s.repo.GetByAppointment(ctx, appointmentID)
	if err == nil {
		return enc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	enc = &Encounter{
		AppointmentID: appointmentID,
		PatientID:     patientID,
		DoctorID:      doctorID,
		Status:        StatusDraft,
		Diagnoses:     []Diagnosis{},
		Medications:   []Medication{},
		LabTests:      []string{},
	}
	if err := s.repo.Create(ctx, enc); err != nil {
		return nil, fmt.Errorf("creating encounter draft: %w", err)
	}
	return enc, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Encounter, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}

func (s *Service) draft(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	enc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enc.Status != StatusDraft {
		return nil, ErrNotDraft
	}
	return enc, nil
}

// UpdateNotes saves the free-text portions of the draft.
func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, chiefComplaint, symptoms, advice, followUpDate string) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	enc.ChiefComplaint = chiefComplaint
	enc.Symptoms = symptoms
	enc.Advice = advice
	enc.FollowUpDate = followUpDate
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func (s *Service) AddDiagnosis(ctx context.Context, id uuid.UUID, d Diagnosis) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	enc.Diagnoses = append(enc.Diagnoses, d)
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func (s *Service) RemoveDiagnosis(ctx context.Context, id uuid.UUID, index int) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(enc.Diagnoses) {
		return nil, ErrIndexOutOfRange
	}
	enc.Diagnoses = append(enc.Diagnoses[:index], enc.Diagnoses[index+1:]...)
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

// ReorderDiagnoses moves one diagnosis line to a new position, shifting the
// lines in between.
func (s *Service) ReorderDiagnoses(ctx context.Context, id uuid.UUID, from, to int) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if from < 0 || from >= len(enc.Diagnoses) || to < 0 || to >= len(enc.Diagnoses) {
		return nil, ErrIndexOutOfRange
	}
	enc.Diagnoses = reorder.Move(enc.Diagnoses, from, to)
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func (s *Service) AddMedication(ctx context.Context, id uuid.UUID, m Medication) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	enc.Medications = append(enc.Medications, m)
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func (s *Service) RemoveMedication(ctx context.Context, id uuid.UUID, index int) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(enc.Medications) {
		return nil, ErrIndexOutOfRange
	}
	enc.Medications = append(enc.Medications[:index], enc.Medications[index+1:]...)
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

func (s *Service) ReorderMedications(ctx context.Context, id uuid.UUID, from, to int) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	if from < 0 || from >= len(enc.Medications) || to < 0 || to >= len(enc.Medications) {
		return nil, ErrIndexOutOfRange
	}
	enc.Medications = reorder.Move(enc.Medications, from, to)
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

// OverwriteDraft replaces the draft's content fields wholesale. Used when
// assistant suggestions are applied; whatever the doctor had in those fields
// is replaced, not merged.
func (s *Service) OverwriteDraft(ctx context.Context, id uuid.UUID, req FinalizeRequest) (*Encounter, error) {
	enc, err := s.draft(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Normalize()
	enc.ChiefComplaint = req.ChiefComplaint
	enc.Symptoms = req.Symptoms
	enc.Diagnoses = req.Diagnoses
	enc.Medications = req.Medications
	enc.LabTests = req.LabTests
	enc.Advice = req.Advice
	enc.FollowUpDate = req.FollowUpDate
	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	return enc, nil
}

// Finalize closes the encounter with the complete consultation payload.
//
// The idempotency key makes retries safe: a replay with a key that already
// finalized an encounter returns that encounter unchanged. A draft can only
// finalize once; later attempts with a different key are rejected.
func (s *Service) Finalize(ctx context.Context, id uuid.UUID, req FinalizeRequest, idempotencyKey string) (*Encounter, error) {
	if idempotencyKey == "" {
		return nil, ErrMissingIdempotency
	}

	if prev, err := s.repo.GetByIdempotencyKey(ctx, idempotencyKey); err == nil {
		return prev, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	enc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if enc.Status == StatusFinalized {
		return nil, ErrAlreadyFinalized
	}
	if req.ChiefComplaint == "" {
		return nil, ErrMissingComplaint
	}
	req.Normalize()

	now := s.now()
	enc.Status = StatusFinalized
	enc.ChiefComplaint = req.ChiefComplaint
	enc.Symptoms = req.Symptoms
	enc.Diagnoses = req.Diagnoses
	enc.Medications = req.Medications
	enc.LabTests = req.LabTests
	enc.Advice = req.Advice
	enc.FollowUpDate = req.FollowUpDate
	enc.IdempotencyKey = idempotencyKey
	enc.FinalizedAt = &now

	if err := s.repo.Update(ctx, enc); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("encounter_id", enc.ID.String()).
		Int("diagnoses", len(enc.Diagnoses)).
		Int("medications", len(enc.Medications)).
		Msg("encounter finalized")
	return enc, nil
}

// Search finds past cases matching the filter.
func (s *Service) Search(ctx context.Context, filter SearchFilter, limit, offset int) ([]*Encounter, int, error) {
	return s.repo.Search(ctx, filter, limit, offset)
}
