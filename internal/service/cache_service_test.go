package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("i/o timeout")
}

func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("i/o timeout")
}

func (brokenCacheRepo) DeleteByPrefix(context.Context, string) error {
	return errors.New("i/o timeout")
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	svc := NewCacheService(brokenCacheRepo{}, nil, time.Minute, zap.NewNop(), false)
	var dest []string

	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.NoError(t, err)
	assert.NoError(t, svc.Set(context.Background(), "k", dest, 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "k"))
}

func TestCacheServiceCountsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	cache, _ := newRedisCache(t)
	cache.metrics = metrics
	ctx := context.Background()
	var dest []string

	hit, err := cache.Get(ctx, "donors:search:x", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "donors:search:x", []string{"p1"}, 0))
	hit, err = cache.Get(ctx, "donors:search:x", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"p1"}, dest)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheMisses))
}

func TestCacheServiceSurfacesStoreErrors(t *testing.T) {
	svc := NewCacheService(brokenCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	var dest []string

	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Error(t, svc.Invalidate(context.Background(), "donors:search:"))
}

type slowCacheRepo struct {
	brokenCacheRepo
}

func (slowCacheRepo) Get(ctx context.Context, _ string, _ interface{}) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestCacheServiceSlowLookupDegradesToMiss(t *testing.T) {
	svc := NewCacheService(slowCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc.opTimeout = 10 * time.Millisecond
	var dest []string

	start := time.Now()
	hit, err := svc.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
