// Package grader оценивает свободные текстовые ответы через LLM API
// (совместимое с OpenAI chat completions). Вердикты кешируются в Redis,
// чтобы повторный ответ той же формулировки не стоил второго запроса.
package grader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/quizhost-api/internal/config"
	"github.com/yourusername/quizhost-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// ErrDisabled возвращается, когда API-ключ не сконфигурирован
var ErrDisabled = errors.New("grader is disabled: no api key configured")

const systemPrompt = "You are a quiz answer judge. Given a question, the expected answer and a player's answer, " +
	"decide whether the player's answer should be accepted as correct. Accept minor typos, " +
	"alternative spellings and equivalent formulations. Reply with exactly one word: true or false."

// Evaluator - клиент LLM-оценщика
type Evaluator struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	verdictTTL time.Duration
	httpClient *http.Client
	cache      repository.CacheRepository // может быть nil
}

// New создает оценщик из конфигурации. Кеш опционален.
func New(cfg config.GraderConfig, cache repository.CacheRepository) *Evaluator {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	verdictTTL := time.Duration(cfg.VerdictTTLHrs) * time.Hour
	if verdictTTL <= 0 {
		verdictTTL = 24 * time.Hour
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Evaluator{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		timeout:    timeout,
		verdictTTL: verdictTTL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
	}
}

// Enabled сообщает, сконфигурирован ли оценщик
func (e *Evaluator) Enabled() bool {
	return e.apiKey != ""
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Evaluate возвращает вердикт оракула по ответу игрока.
// Ошибка означает, что вызывающему следует применить локальный fallback.
func (e *Evaluator) Evaluate(ctx context.Context, questionText, correctAnswer, playerAnswer string) (bool, error) {
	if !e.Enabled() {
		return false, ErrDisabled
	}

	cacheKey := e.verdictCacheKey(correctAnswer, playerAnswer)
	if e.cache != nil {
		if cached, err := e.cache.Get(cacheKey); err == nil {
			return cached == "true", nil
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[Grader] Ошибка чтения кеша вердиктов: %v", err)
		}
	}

	verdict, err := e.callAPI(ctx, questionText, correctAnswer, playerAnswer)
	if err != nil {
		return false, err
	}

	if e.cache != nil {
		value := "false"
		if verdict {
			value = "true"
		}
		if err := e.cache.Set(cacheKey, value, e.verdictTTL); err != nil {
			log.Printf("[Grader] Ошибка записи кеша вердиктов: %v", err)
		}
	}
	return verdict, nil
}

func (e *Evaluator) callAPI(ctx context.Context, questionText, correctAnswer, playerAnswer string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Question: %s\nExpected answer: %s\nPlayer's answer: %s",
		questionText, correctAnswer, playerAnswer)

	body, err := json.Marshal(chatRequest{
		Model: e.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0,
		MaxTokens:   5,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("grader request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("grader returned status %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("failed to decode grader response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return false, errors.New("grader returned no choices")
	}

	content := strings.ToLower(strings.TrimSpace(parsed.Choices[0].Message.Content))
	switch {
	case strings.HasPrefix(content, "true"):
		return true, nil
	case strings.HasPrefix(content, "false"):
		return false, nil
	default:
		return false, fmt.Errorf("unexpected grader verdict: %q", content)
	}
}

// verdictCacheKey строит ключ кеша по паре (правильный ответ, ответ игрока)
func (e *Evaluator) verdictCacheKey(correctAnswer, playerAnswer string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(correctAnswer)) + "\x00" +
		strings.ToLower(strings.TrimSpace(playerAnswer))))
	return "grader:verdict:" + hex.EncodeToString(sum[:])
}
