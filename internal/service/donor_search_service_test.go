package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/repository"
)

type fakeDonorSearchRepo struct {
	calls      int
	predicates []models.Predicate
	result     []models.Profile
	err        error
	onSearch   func()
}

func (f *fakeDonorSearchRepo) Search(_ context.Context, predicates []models.Predicate) ([]models.Profile, error) {
	f.calls++
	f.predicates = predicates
	if f.onSearch != nil {
		f.onSearch()
	}
	return f.result, f.err
}

func newRedisCache(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return NewCacheService(repository.NewCacheRepository(client, "test:"), nil, time.Minute, zap.NewNop(), true), srv
}

func TestDonorSearchPassesOnlyFilledCriteria(t *testing.T) {
	repo := &fakeDonorSearchRepo{result: []models.Profile{{ID: "p1"}}}
	svc := NewDonorSearchService(repo, nil, time.Minute, nil, zap.NewNop())

	got, _ := svc.Search(context.Background(), models.DonorSearchCriteria{BloodGroup: "A+", Block: " Central "})
	assert.Len(t, got, 1)
	assert.Equal(t, []models.Predicate{
		{Column: "blood_group", Value: "A+"},
		{Column: "block", Value: "Central"},
	}, repo.predicates)
}

func TestDonorSearchSwallowsStoreErrors(t *testing.T) {
	repo := &fakeDonorSearchRepo{err: errors.New("connection refused")}
	svc := NewDonorSearchService(repo, nil, time.Minute, NewMetricsService(), zap.NewNop())

	got, _ := svc.Search(context.Background(), models.DonorSearchCriteria{State: "Kerala"})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDonorSearchServesRepeatFromCache(t *testing.T) {
	cache, _ := newRedisCache(t)
	repo := &fakeDonorSearchRepo{result: []models.Profile{{ID: "p1", BloodGroup: models.BloodGroupOPos}}}
	svc := NewDonorSearchService(repo, cache, time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	criteria := models.DonorSearchCriteria{BloodGroup: "O+"}
	first, hit := svc.Search(ctx, criteria)
	assert.False(t, hit)
	second, hit := svc.Search(ctx, models.DonorSearchCriteria{BloodGroup: " O+ "})
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate(ctx)
	svc.Search(ctx, criteria)
	assert.Equal(t, 2, repo.calls)
}

func TestDonorSearchFallsBackWhenRedisDown(t *testing.T) {
	cache, srv := newRedisCache(t)
	srv.Close()
	repo := &fakeDonorSearchRepo{result: []models.Profile{{ID: "p1"}}}
	svc := NewDonorSearchService(repo, cache, time.Minute, nil, zap.NewNop())

	got, hit := svc.Search(context.Background(), models.DonorSearchCriteria{})
	assert.False(t, hit)
	assert.Len(t, got, 1)
	assert.Empty(t, repo.predicates)
}

// gatedSearchRepo holds every query until released, failing only if its own context ends.
type gatedSearchRepo struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
	result  []models.Profile
}

func (g *gatedSearchRepo) Search(ctx context.Context, _ []models.Predicate) ([]models.Profile, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
		return g.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestDonorSearchSharedQuerySurvivesCallerCancel(t *testing.T) {
	repo := &gatedSearchRepo{
		started: make(chan struct{}),
		release: make(chan struct{}),
		result:  []models.Profile{{ID: "p1"}},
	}
	svc := NewDonorSearchService(repo, nil, time.Minute, nil, zap.NewNop())
	criteria := models.DonorSearchCriteria{BloodGroup: "B+"}

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	var first, second []models.Profile
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		first, _ = svc.Search(firstCtx, criteria)
	}()
	<-repo.started
	go func() {
		defer wg.Done()
		second, _ = svc.Search(context.Background(), criteria)
	}()

	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	assert.Len(t, first, 1)
	assert.Len(t, second, 1)
}

func TestDonorSearchSkipsCacheFillAcrossInvalidation(t *testing.T) {
	cache, _ := newRedisCache(t)
	repo := &fakeDonorSearchRepo{result: []models.Profile{{ID: "p1"}}}
	svc := NewDonorSearchService(repo, cache, time.Minute, nil, zap.NewNop())
	ctx := context.Background()
	criteria := models.DonorSearchCriteria{District: "Ernakulam"}

	// A profile write lands while the query is reading the store.
	repo.onSearch = func() { svc.Invalidate(ctx) }
	got, hit := svc.Search(ctx, criteria)
	assert.False(t, hit)
	assert.Len(t, got, 1)

	repo.onSearch = nil
	_, hit = svc.Search(ctx, criteria)
	assert.False(t, hit)
	assert.Equal(t, 2, repo.calls)

	_, hit = svc.Search(ctx, criteria)
	assert.True(t, hit)
	assert.Equal(t, 2, repo.calls)
}
