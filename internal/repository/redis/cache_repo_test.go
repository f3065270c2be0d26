package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

func newTestCacheRepo(t *testing.T) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo, err := NewCacheRepo(client)
	require.NoError(t, err)
	return repo, mr
}

func TestCacheRepo_NilClient(t *testing.T) {
	_, err := NewCacheRepo(nil)
	assert.Error(t, err)
}

func TestCacheRepo_SetGet(t *testing.T) {
	repo, _ := newTestCacheRepo(t)

	require.NoError(t, repo.Set("key", "value", time.Minute))

	got, err := repo.Get("key")
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}

func TestCacheRepo_GetMissing(t *testing.T) {
	repo, _ := newTestCacheRepo(t)

	_, err := repo.Get("missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Отсутствующий ключ - доменная ошибка, не redis.Nil")
}

func TestCacheRepo_Expiration(t *testing.T) {
	repo, mr := newTestCacheRepo(t)

	require.NoError(t, repo.Set("key", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get("key")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCacheRepo_Delete(t *testing.T) {
	repo, _ := newTestCacheRepo(t)

	require.NoError(t, repo.Set("key", "value", 0))
	require.NoError(t, repo.Delete("key"))

	exists, err := repo.Exists("key")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheRepo_SetNX(t *testing.T) {
	repo, _ := newTestCacheRepo(t)

	ok, err := repo.SetNX("lock", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "Первый SetNX захватывает ключ")

	ok, err = repo.SetNX("lock", "2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "Повторный SetNX по живому ключу отклоняется")

	got, err := repo.Get("lock")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}
