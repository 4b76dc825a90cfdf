package vitals

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

var ErrKeyExists = errors.New("vital key already exists")

type Service struct {
	repo     Repository
	resolver *Resolver
	logger   zerolog.Logger
}

func NewService(repo Repository, resolver *Resolver, logger zerolog.Logger) *Service {
	return &Service{repo: repo, resolver: resolver, logger: logger}
}

// Catalog returns the active vitals catalog, never empty.
func (s *Service) Catalog(ctx context.Context) []VitalDefinition {
	return s.resolver.Resolve(ctx)
}

// ResolveForPreference reconciles a saved preference against the current
// catalog and returns the reconciled preference plus the ordered definitions.
func (s *Service) ResolveForPreference(ctx context.Context, saved Preference) (Preference, []VitalDefinition) {
	catalog := s.resolver.Resolve(ctx)
	pref := ReconcileOrder(catalog, saved)
	return pref, OrderedCatalog(catalog, pref)
}

func (s *Service) CreateDefinition(ctx context.Context, v *VitalDefinition) error {
	if existing, err := s.repo.GetByKey(ctx, v.Key); err == nil && existing != nil {
		return ErrKeyExists
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return err
	}
	s.resolver.Invalidate()
	return nil
}

func (s *Service) UpdateDefinition(ctx context.Context, v *VitalDefinition) error {
	if err := s.repo.Update(ctx, v); err != nil {
		return err
	}
	s.resolver.Invalidate()
	return nil
}

func (s *Service) DeactivateDefinition(ctx context.Context, key string) error {
	if err := s.repo.Deactivate(ctx, key); err != nil {
		return err
	}
	s.resolver.Invalidate()
	return nil
}
