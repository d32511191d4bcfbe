package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

type memCache struct {
	entries map[string][]byte
	getErr  error
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

func TestCacheRememberLoadsOnceAndInvalidates(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemCache(), metrics, time.Minute, nil, true)
	loads := 0
	load := func(dest *[]string) func() error {
		return func() error {
			loads++
			*dest = []string{"7A", "7B"}
			return nil
		}
	}

	var first, second []string
	require.NoError(t, cache.Remember(context.Background(), Key("classes", "list"), &first, load(&first)))
	require.NoError(t, cache.Remember(context.Background(), Key("classes", "list"), &second, load(&second)))
	assert.Equal(t, 1, loads)
	assert.Equal(t, []string{"7A", "7B"}, second)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))

	cache.Invalidate(context.Background(), "classes")
	var third []string
	require.NoError(t, cache.Remember(context.Background(), Key("classes", "list"), &third, load(&third)))
	assert.Equal(t, 2, loads)
}

func TestCacheRememberDegradesOnFailure(t *testing.T) {
	repo := newMemCache()
	repo.getErr = errors.New("redis down")
	cache := NewCacheService(repo, nil, 0, nil, true)

	var out []string
	err := cache.Remember(context.Background(), "k", &out, func() error {
		out = []string{"x"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, out)
}

func TestCacheDisabledAlwaysLoads(t *testing.T) {
	cache := NewCacheService(newMemCache(), nil, 0, nil, false)
	assert.False(t, cache.Enabled())

	loadErr := errors.New("db down")
	var out []string
	err := cache.Remember(context.Background(), "k", &out, func() error { return loadErr })
	assert.ErrorIs(t, err, loadErr)
}

func TestMetricsRecordRegistrationDecision(t *testing.T) {
	metrics := NewMetricsService()
	metrics.RecordRegistrationDecision("approved")
	metrics.RecordRegistrationDecision("approved")
	metrics.RecordRegistrationDecision("rejected")
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.registrationDecisions.WithLabelValues("approved")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.registrationDecisions.WithLabelValues("rejected")))

	var nilMetrics *MetricsService
	nilMetrics.RecordRegistrationDecision("approved")
}
