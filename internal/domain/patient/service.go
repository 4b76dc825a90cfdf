package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MinSearchLength is the shortest query the search endpoint accepts. Shorter
// queries would sweep most of the registry on every keystroke.
const MinSearchLength = 2

var (
	ErrQueryTooShort  = errors.New("search query must be at least 2 characters")
	ErrInvalidPatient = errors.New("full name and phone are required")
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByUHID(ctx context.Context, uhid string) (*Patient, error) {
	return s.repo.GetByUHID(ctx, uhid)
}

// RegisterPatient creates a patient and assigns the next UHID, shaped
// MM-YYYY-NNNNNN.
func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" || p.Phone == "" {
		return ErrInvalidPatient
	}
	seq, err := s.repo.NextUHIDSequence(ctx)
	if err != nil {
		return fmt.Errorf("allocating uhid: %w", err)
	}
	p.UHID = fmt.Sprintf("MM-%d-%06d", time.Now().Year(), seq)
	return s.repo.Create(ctx, p)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FullName == "" || p.Phone == "" {
		return ErrInvalidPatient
	}
	return s.repo.Update(ctx, p)
}

// SearchPatients matches the query against name, UHID and phone. Queries
// shorter than MinSearchLength are rejected. Length is counted in runes so
// names in non-Latin scripts get the same threshold clients apply.
func (s *Service) SearchPatients(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinSearchLength {
		return nil, 0, ErrQueryTooShort
	}
	return s.repo.Search(ctx, query, limit, offset)
}
