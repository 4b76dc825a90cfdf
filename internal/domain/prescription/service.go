package prescription

import (
	"context"
	"io"

	"github.com/rs/zerolog"
)

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) Upload(ctx context.Context, meta Prescription, content io.Reader) (*Prescription, error) {
	p, err := s.store.Upload(ctx, meta, content)
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("prescription_id", p.ID).
		Str("encounter_id", p.EncounterID).
		Int64("size", p.Size).
		Msg("prescription stored")
	return p, nil
}

func (s *Service) Download(ctx context.Context, id string) (io.ReadCloser, *Prescription, error) {
	return s.store.Download(ctx, id)
}

func (s *Service) ListByEncounter(ctx context.Context, encounterID string) ([]*Prescription, error) {
	return s.store.ListByEncounter(ctx, encounterID)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}
