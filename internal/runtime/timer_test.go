package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// ============================================================================
// Таймерная горутина вопроса: истечение, reveal, пауза, ручной режим.
// Секундная длительность, чтобы таймер успевал сработать внутри теста.
// ============================================================================

func withSecondDuration(q entity.Question) entity.Question {
	q.DurationSeconds = 1
	return q
}

func TestTimer_ExpiryRevealsAndAdvances(t *testing.T) {
	env := newTestEnv(nil)
	sessionID := env.createSession(t, makeQuiz(0, withSecondDuration(closestQuestion("100"))))
	p1 := env.registerPlayer(t, sessionID, "p1")
	env.registerPlayer(t, sessionID, "p2") // не отвечает: fast-forward исключен
	require.NoError(t, env.controller.Start(sessionID))
	require.NoError(t, env.controller.ForceNext(sessionID))

	require.True(t, env.controller.SubmitAnswer(sessionID, p1, strPtr("100")))
	require.Equal(t, entity.SessionStatusLive, env.sessionStatus(t, sessionID))

	// Истекший таймер сам закрывает вопрос, финализирует closest
	// и после паузы двигает таймлайн за последний этап
	assert.Eventually(t, func() bool {
		return env.sessionStatus(t, sessionID) == entity.SessionStatusFinished
	}, 3*time.Second, 20*time.Millisecond, "Таймер должен довести сессию до finished")

	assert.Equal(t, 1.5, env.playerScore(t, p1), "Финализация closest выполнена таймером")
	assert.Equal(t, "", env.controller.ActiveSessionID(), "После завершения активной сессии нет")
}

func TestTimer_ObservesManualOverride(t *testing.T) {
	env := newTestEnv(nil)
	sessionID := env.createSession(t, makeQuiz(0, withSecondDuration(mcQuestion("A", "A", "B"))))
	env.registerPlayer(t, sessionID, "p1")
	require.NoError(t, env.controller.Start(sessionID))
	require.NoError(t, env.controller.ForceNext(sessionID))

	require.NoError(t, env.controller.SetManual(sessionID, true))

	// Таймер просыпается через секунду, видит ручной режим и отступает
	time.Sleep(1500 * time.Millisecond)

	assert.Equal(t, entity.SessionStatusLive, env.sessionStatus(t, sessionID),
		"В ручном режиме истекший таймер не двигает таймлайн")
	state, err := env.controller.State(sessionID)
	require.NoError(t, err)
	require.NotNil(t, state.Question, "Сессия остается на этапе вопроса")

	// Снятие ручного режима после дедлайна: остаток <= 0, переход сразу
	env.clock.Advance(2 * time.Second)
	require.NoError(t, env.controller.SetManual(sessionID, false))

	assert.Equal(t, entity.SessionStatusFinished, env.sessionStatus(t, sessionID),
		"После снятия ручного режима таймлайн двигается немедленно")
}
