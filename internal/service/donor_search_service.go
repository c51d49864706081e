package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

// searchQueryTimeout bounds a shared store query, which outlives the caller that started it.
const searchQueryTimeout = 5 * time.Second

type donorSearchRepository interface {
	Search(ctx context.Context, predicates []models.Predicate) ([]models.Profile, error)
}

type searchCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
}

// DonorSearchService turns sparse criteria into one conjunctive profile query.
// Failures are logged and reported to callers as an empty result.
type DonorSearchService struct {
	repo    donorSearchRepository
	cache   searchCache
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
	flight  singleflight.Group
	// generation advances on every invalidation; a query that spans one does not fill the cache.
	generation atomic.Uint64
}

// NewDonorSearchService constructs a DonorSearchService. cache may be nil.
func NewDonorSearchService(repo donorSearchRepository, cache searchCache, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *DonorSearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DonorSearchService{repo: repo, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

// Search returns donors matching every non-blank criterion and whether they came from cache.
// It never fails.
func (s *DonorSearchService) Search(ctx context.Context, criteria models.DonorSearchCriteria) ([]models.Profile, bool) {
	criteria = criteria.Normalize()
	key := criteria.CacheKey()

	if s.cache != nil {
		var cached []models.Profile
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("donor search cache unavailable", zap.Error(err))
		}
		if hit {
			s.metrics.RecordDonorSearch("hit")
			return cached, true
		}
	}

	// Concurrent identical searches share one query, detached from any single caller.
	result, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.query(context.WithoutCancel(ctx), key, criteria)
	})
	if err != nil {
		s.metrics.RecordDonorSearch("error")
		s.logger.Error("donor search failed", zap.String("key", key), zap.Error(err))
		return []models.Profile{}, false
	}
	s.metrics.RecordDonorSearch("miss")
	profiles, _ := result.([]models.Profile)
	return profiles, false
}

func (s *DonorSearchService) query(ctx context.Context, key string, criteria models.DonorSearchCriteria) ([]models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, searchQueryTimeout)
	defer cancel()

	generation := s.generation.Load()
	profiles, err := s.repo.Search(ctx, criteria.Predicates())
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}

	if s.cache != nil && s.generation.Load() == generation {
		_ = s.cache.Set(ctx, key, profiles, s.ttl)
	}
	return profiles, nil
}

// Invalidate drops every cached search result.
func (s *DonorSearchService) Invalidate(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, models.DonorSearchCachePrefix); err != nil {
		s.logger.Warn("donor search cache invalidation failed", zap.Error(err))
	}
}
