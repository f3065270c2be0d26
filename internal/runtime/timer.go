package runtime

import (
	"context"
	"log"
	"time"
)

// На контроллер существует максимум одна таймерная горутина; запуск
// нового этапа отменяет предыдущую через контекст. Проснувшийся после
// отмены таймер дополнительно сверяет generation, прежде чем трогать
// состояние: поздний wake-up против уже сменившегося этапа - no-op.

// startTimerLocked запускает таймер вопроса. Вызывается под мьютексом.
func (c *Controller) startTimerLocked(sessionID string, duration, gap time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	c.timerCancel = cancel
	go c.runStageTimer(ctx, sessionID, c.generation, duration, gap)
}

// startGapAdvanceLocked запускает паузу перед следующим этапом
// (используется fast-forward после немедленного reveal)
func (c *Controller) startGapAdvanceLocked(sessionID string, gap time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	c.timerCancel = cancel
	go func(generation uint64) {
		if !sleepCtx(ctx, gap) {
			return
		}
		c.forceNextIfCurrent(sessionID, generation)
	}(c.generation)
}

// cancelTimerLocked промптно отменяет текущую таймерную горутину
func (c *Controller) cancelTimerLocked() {
	if c.timerCancel != nil {
		c.timerCancel()
		c.timerCancel = nil
	}
}

// runStageTimer - жизненный цикл таймера одного вопроса:
// сон на длительность, проверка ручного режима, reveal, пауза, переход
func (c *Controller) runStageTimer(ctx context.Context, sessionID string, generation uint64, duration, gap time.Duration) {
	if !sleepCtx(ctx, duration) {
		return
	}

	// Перечитываем сессию: ведущий мог взять ручное управление,
	// пока таймер спал
	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		log.Printf("[RuntimeController] Таймер: сессия %s недоступна: %v", sessionID, err)
		return
	}
	if session.ManualOverride {
		log.Printf("[RuntimeController] Таймер сессии %s: ручной режим, автопереход отменен", sessionID)
		return
	}

	if !c.revealIfCurrent(sessionID, generation) {
		return
	}

	if !sleepCtx(ctx, gap) {
		return
	}
	c.forceNextIfCurrent(sessionID, generation)
}

// revealIfCurrent закрывает окно приема ответов и финализирует вопрос,
// если этап не сменился с момента запуска таймера
func (c *Controller) revealIfCurrent(sessionID string, generation uint64) bool {
	c.mu.Lock()
	if c.activeSessionID != sessionID || c.generation != generation {
		c.mu.Unlock()
		return false
	}
	c.finalizeCurrentLocked(sessionID)
	c.currentEnd = c.clock.Now()
	c.broadcastAsync(sessionID)
	c.mu.Unlock()
	return true
}

// forceNextIfCurrent двигает таймлайн, если этап не сменился
// с момента запуска таймера
func (c *Controller) forceNextIfCurrent(sessionID string, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSessionID != sessionID || c.generation != generation {
		return
	}
	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		log.Printf("[RuntimeController] Таймер: сессия %s недоступна: %v", sessionID, err)
		return
	}
	if err := c.advanceLocked(session); err != nil {
		log.Printf("[RuntimeController] Таймер: ошибка перехода сессии %s: %v", sessionID, err)
	}
}

// sleepCtx спит заданное время; false, если сон прерван отменой
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
