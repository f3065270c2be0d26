package grader

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizhost-api/internal/config"
	redisrepo "github.com/yourusername/quizhost-api/internal/repository/redis"
)

// graderServer поднимает фейковый chat completions endpoint,
// отвечающий заданным вердиктом
func graderServer(t *testing.T, verdict string, calls *int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(calls, 1)

		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req["model"])

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": verdict}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newEvaluator(baseURL string, cache *redisrepo.CacheRepo) *Evaluator {
	cfg := config.GraderConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
	}
	if cache != nil {
		return New(cfg, cache)
	}
	return New(cfg, nil)
}

func TestEvaluate_TrueVerdict(t *testing.T) {
	var calls int64
	server := graderServer(t, "true", &calls)
	defer server.Close()

	evaluator := newEvaluator(server.URL, nil)
	verdict, err := evaluator.Evaluate(context.Background(), "Who pulls the sleigh?", "Rudolph", "rudolf")

	require.NoError(t, err)
	assert.True(t, verdict)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestEvaluate_FalseVerdict(t *testing.T) {
	var calls int64
	server := graderServer(t, "False.", &calls)
	defer server.Close()

	evaluator := newEvaluator(server.URL, nil)
	verdict, err := evaluator.Evaluate(context.Background(), "q", "Rudolph", "Santa")

	require.NoError(t, err)
	assert.False(t, verdict, "Вердикт парсится без учета регистра и пунктуации")
}

func TestEvaluate_UnexpectedVerdictIsError(t *testing.T) {
	var calls int64
	server := graderServer(t, "maybe", &calls)
	defer server.Close()

	evaluator := newEvaluator(server.URL, nil)
	_, err := evaluator.Evaluate(context.Background(), "q", "a", "b")

	assert.Error(t, err, "Невалидный вердикт - ошибка, вызывающий уйдет в fallback")
}

func TestEvaluate_ServerErrorPropagated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	evaluator := newEvaluator(server.URL, nil)
	_, err := evaluator.Evaluate(context.Background(), "q", "a", "b")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEvaluate_DisabledWithoutAPIKey(t *testing.T) {
	evaluator := New(config.GraderConfig{}, nil)

	assert.False(t, evaluator.Enabled())
	_, err := evaluator.Evaluate(context.Background(), "q", "a", "b")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestEvaluate_VerdictCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache, err := redisrepo.NewCacheRepo(client)
	require.NoError(t, err)

	var calls int64
	server := graderServer(t, "true", &calls)
	defer server.Close()

	evaluator := newEvaluator(server.URL, cache)

	first, err := evaluator.Evaluate(context.Background(), "q", "Rudolph", "rudolf")
	require.NoError(t, err)
	second, err := evaluator.Evaluate(context.Background(), "q", "Rudolph", " RUDOLF ")
	require.NoError(t, err)

	assert.True(t, first)
	assert.True(t, second)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls),
		"Второй запрос той же пары (с точностью до регистра и пробелов) берется из кеша")
}

func TestEvaluate_CacheExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache, err := redisrepo.NewCacheRepo(client)
	require.NoError(t, err)

	var calls int64
	server := graderServer(t, "true", &calls)
	defer server.Close()

	evaluator := newEvaluator(server.URL, cache)
	_, err = evaluator.Evaluate(context.Background(), "q", "a", "b")
	require.NoError(t, err)

	// Протухший вердикт требует нового запроса
	mr.FastForward(25 * time.Hour)
	_, err = evaluator.Evaluate(context.Background(), "q", "a", "b")
	require.NoError(t, err)

	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}
