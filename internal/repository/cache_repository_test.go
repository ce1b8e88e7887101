package repository

import (
	"context"
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/courses-api/pkg/errors"
)

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, repo.Get(ctx, "courses:list:20173", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "courses:list:20173", []string{"a", "b"}, time.Minute))
	require.NoError(t, repo.Get(ctx, "courses:list:20173", &out))
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestMemoryCacheRepositoryDeleteByPattern(t *testing.T) {
	repo := NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "courses:list:20173", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "courses:list:20181", 2, time.Minute))
	require.NoError(t, repo.Set(ctx, "courses:detail:1", 3, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "courses:list:*"))

	var v int
	assert.ErrorIs(t, repo.Get(ctx, "courses:list:20173", &v), appErrors.ErrCacheMiss)
	assert.ErrorIs(t, repo.Get(ctx, "courses:list:20181", &v), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Get(ctx, "courses:detail:1", &v))
	assert.Equal(t, 3, v)
}

func TestCacheRepositoryNilClientMisses(t *testing.T) {
	repo := NewCacheRepository(nil)
	var v int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &v), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Second))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}

func TestMemoryCacheRepositoryDeleteByPatternSpansSlashes(t *testing.T) {
	repo := NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "courses:list:2017/18", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "courses:list:20173", 2, time.Minute))
	require.NoError(t, repo.Set(ctx, "courses:detail:1", 3, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "courses:list:*"))

	var v int
	assert.ErrorIs(t, repo.Get(ctx, "courses:list:2017/18", &v), appErrors.ErrCacheMiss)
	assert.ErrorIs(t, repo.Get(ctx, "courses:list:20173", &v), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Get(ctx, "courses:detail:1", &v))
}

func TestMemoryCacheRepositoryDeleteByExactKey(t *testing.T) {
	repo := NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "courses:detail:1", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "courses:detail:12", 2, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "courses:detail:1"))

	var v int
	assert.ErrorIs(t, repo.Get(ctx, "courses:detail:1", &v), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Get(ctx, "courses:detail:12", &v))
	assert.Equal(t, 2, v)
}
