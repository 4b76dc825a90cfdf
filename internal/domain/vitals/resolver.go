package vitals

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const catalogCacheKey = "catalog"

// Resolver serves the vitals catalog with an in-memory cache and a built-in
// fallback. A catalog load failure is logged and absorbed; callers always get
// a usable catalog.
type Resolver struct {
	repo   Repository
	cache  *lru.Cache[string, []VitalDefinition]
	logger zerolog.Logger
}

func NewResolver(repo Repository, logger zerolog.Logger) (*Resolver, error) {
	cache, err := lru.New[string, []VitalDefinition](8)
	if err != nil {
		return nil, err
	}
	return &Resolver{repo: repo, cache: cache, logger: logger}, nil
}

// Resolve returns the active catalog, falling back to the built-in set when
// the store is unreachable or returns nothing. Fallback results are not
// cached so a recovered store is picked up on the next call.
func (r *Resolver) Resolve(ctx context.Context) []VitalDefinition {
	if cached, ok := r.cache.Get(catalogCacheKey); ok {
		return cached
	}

	defs, err := r.repo.ListActive(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("vitals catalog load failed, using fallback")
		return FallbackVitals()
	}
	if len(defs) == 0 {
		r.logger.Warn().Msg("vitals catalog is empty, using fallback")
		return FallbackVitals()
	}

	r.cache.Add(catalogCacheKey, defs)
	return defs
}

// Invalidate drops the cached catalog. Called after catalog writes.
func (r *Resolver) Invalidate() {
	r.cache.Remove(catalogCacheKey)
}
