package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/campushub/activity-points-api/pkg/errors"
)

type rosterRepoStub struct {
	usns  []string
	calls int
}

func (r *rosterRepoStub) ListUSNs(ctx context.Context) ([]string, error) {
	r.calls++
	return r.usns, nil
}

// cacheRepoStub is an in-memory CacheRepository backed by JSON, mirroring the
// redis round trip.
type cacheRepoStub struct {
	entries map[string][]byte
}

func newCacheRepoStub() *cacheRepoStub {
	return &cacheRepoStub{entries: map[string][]byte{}}
}

func (c *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	data, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = data
	return nil
}

func (c *cacheRepoStub) Delete(ctx context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func TestRosterCachesSecondRead(t *testing.T) {
	repo := &rosterRepoStub{usns: []string{"1BY21CS001", "1BY21CS002"}}
	cacheSvc := NewCacheService(newCacheRepoStub(), nil, time.Minute, zap.NewNop(), true)
	svc := NewRosterService(repo, cacheSvc, time.Minute, zap.NewNop())
	ctx := context.Background()

	usns, hit, err := svc.ListUSNs(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []string{"1BY21CS001", "1BY21CS002"}, usns)

	usns, hit, err = svc.ListUSNs(ctx)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"1BY21CS001", "1BY21CS002"}, usns)
	assert.Equal(t, 1, repo.calls, "second read served from cache")
}

func TestRosterInvalidationForcesReload(t *testing.T) {
	repo := &rosterRepoStub{usns: []string{"1BY21CS001"}}
	cacheSvc := NewCacheService(newCacheRepoStub(), nil, time.Minute, zap.NewNop(), true)
	svc := NewRosterService(repo, cacheSvc, time.Minute, zap.NewNop())
	ctx := context.Background()

	_, _, err := svc.ListUSNs(ctx)
	require.NoError(t, err)

	repo.usns = append(repo.usns, "1BY21CS002")
	require.NoError(t, svc.InvalidateRoster(ctx))

	usns, hit, err := svc.ListUSNs(ctx)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, usns, 2)
}

func TestRosterWorksWithCacheDisabled(t *testing.T) {
	repo := &rosterRepoStub{usns: []string{"1BY21CS001"}}
	cacheSvc := NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
	svc := NewRosterService(repo, cacheSvc, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		usns, hit, err := svc.ListUSNs(ctx)
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Equal(t, []string{"1BY21CS001"}, usns)
	}
	assert.Equal(t, 2, repo.calls)
}
