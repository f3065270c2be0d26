package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	"github.com/yourusername/quizhost-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// Grader - внешний оракул для свободных текстовых ответов.
// Возвращает вердикт "ответ засчитан / не засчитан" либо ошибку,
// при которой контроллер переходит на локальное сравнение строк.
type Grader interface {
	Evaluate(ctx context.Context, questionText, correctAnswer, playerAnswer string) (bool, error)
}

// Notifier получает уведомление о завершении сессии с итоговой таблицей.
// Вызывается асинхронно, ошибки не влияют на контроллер.
type Notifier interface {
	SessionFinished(session *entity.Session, players []entity.SessionPlayer)
}

// Dependencies - внешние зависимости контроллера
type Dependencies struct {
	Sessions  repository.SessionRepository
	Players   repository.SessionPlayerRepository
	Answers   repository.SessionAnswerRepository
	Snapshots repository.SessionSnapshotRepository
	Grader    Grader   // может быть nil: тогда текстовые ответы сравниваются локально
	Notifier  Notifier // может быть nil
	Clock     Clock    // nil = системные часы
}

// Controller - конечный автомат live-сессии. В процессе живет максимум
// одна активная сессия; все мутирующие операции сериализуются одним
// мьютексом. Таймеры и рассылки работают отдельными горутинами и
// входят обратно через публичное API.
type Controller struct {
	deps        Dependencies
	clock       Clock
	broadcaster *Broadcaster

	mu sync.Mutex

	// Активная сессия и ее материализованный таймлайн
	activeSessionID string
	timeline        []TimelineEntry
	currentIndex    int
	currentEntry    *TimelineEntry
	currentStart    time.Time
	currentEnd      time.Time
	// currentFinalized защищает финализацию от двойного запуска
	// при гонке таймера и fast-forward
	currentFinalized bool

	// generation растет на каждом переходе этапа; проснувшийся таймер
	// сверяет его и молча умирает, если этап уже сменился
	generation  uint64
	timerCancel context.CancelFunc

	// Кеши по сессиям. Мутируется только активная сессия,
	// но игроки и флаг reveal переживают завершение.
	players        map[string]map[string]*entity.SessionPlayer
	scoresRevealed map[string]bool

	// Кеши текущего вопроса активной сессии
	answered       map[string]bool
	answerResults  map[string]*bool
	answerValues   map[string]string
	closestResults []ClosestResult
}

// NewController создает контроллер сессий
func NewController(deps Dependencies, broadcaster *Broadcaster) *Controller {
	clock := deps.Clock
	if clock == nil {
		clock = NewRealClock()
	}
	return &Controller{
		deps:           deps,
		clock:          clock,
		broadcaster:    broadcaster,
		currentIndex:   -1,
		players:        make(map[string]map[string]*entity.SessionPlayer),
		scoresRevealed: make(map[string]bool),
		answered:       make(map[string]bool),
		answerResults:  make(map[string]*bool),
		answerValues:   make(map[string]string),
	}
}

// Broadcaster возвращает брокер рассылки контроллера
func (c *Controller) Broadcaster() *Broadcaster {
	return c.broadcaster
}

// Start запускает сессию: строит таймлайн, помечает сессию live
// и переводит ее на первый этап. Если в контроллере уже шла другая
// сессия, она предварительно отменяется.
func (c *Controller) Start(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}

	playlist, err := c.deps.Sessions.GetPlaylist(sessionID)
	if err != nil {
		return err
	}
	timeline := BuildTimeline(playlist)
	if CountQuestions(timeline) == 0 {
		return fmt.Errorf("%w: no questions to run", apperrors.ErrValidation)
	}

	if c.activeSessionID != "" {
		log.Printf("[RuntimeController] Запуск сессии %s прерывает активную сессию %s", sessionID, c.activeSessionID)
		c.cancelLocked(c.activeSessionID)
	}

	c.activeSessionID = sessionID
	c.timeline = timeline
	c.currentIndex = -1
	c.currentEntry = nil
	c.currentFinalized = false

	now := c.clock.Now()
	session.Status = entity.SessionStatusLive
	session.StartedAt = &now
	session.FinishedAt = nil
	if err := c.deps.Sessions.Update(session); err != nil {
		return err
	}

	if err := c.loadPlayersLocked(sessionID); err != nil {
		return err
	}
	delete(c.scoresRevealed, sessionID)

	log.Printf("[RuntimeController] Сессия %s запущена: %d этапов, %d вопросов",
		sessionID, len(timeline), CountQuestions(timeline))

	return c.advanceLocked(session)
}

// ForceNext принудительно переводит активную сессию на следующий этап
func (c *Controller) ForceNext(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeSessionID != sessionID {
		return fmt.Errorf("%w: session %s is not active", apperrors.ErrInvalidTransition, sessionID)
	}
	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	return c.advanceLocked(session)
}

// SetManual включает или снимает ручное управление ведущего.
// Снятие ручного режима на идущем вопросе возобновляет таймер
// с оставшимся временем либо сразу двигает таймлайн дальше,
// если дедлайн уже прошел.
func (c *Controller) SetManual(sessionID string, manual bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	session.ManualOverride = manual
	if err := c.deps.Sessions.Update(session); err != nil {
		return err
	}

	if manual || c.activeSessionID != sessionID || c.currentEntry == nil || !c.currentEntry.IsQuestion() {
		c.broadcastAsync(sessionID)
		return nil
	}

	remaining := c.currentEnd.Sub(c.clock.Now())
	if remaining <= 0 {
		return c.advanceLocked(session)
	}

	c.cancelTimerLocked()
	c.startTimerLocked(sessionID, remaining, time.Duration(c.currentEntry.GapSeconds)*time.Second)
	c.broadcastAsync(sessionID)
	return nil
}

// Cancel останавливает сессию и сбрасывает все ее состояние в памяти.
// Идемпотентен; используется административными reset и delete.
func (c *Controller) Cancel(sessionID string) {
	c.mu.Lock()
	c.cancelLocked(sessionID)
	c.mu.Unlock()
}

func (c *Controller) cancelLocked(sessionID string) {
	if c.activeSessionID == sessionID {
		c.cancelTimerLocked()
		c.generation++
		c.activeSessionID = ""
		c.timeline = nil
		c.currentEntry = nil
		c.currentIndex = -1
		c.currentFinalized = false
		c.clearQuestionCachesLocked()
	}
	delete(c.players, sessionID)
	delete(c.scoresRevealed, sessionID)
	c.broadcaster.Clear(sessionID)
}

// Resume восстанавливает сессию из самого свежего снапшота после
// перезапуска процесса: курсор таймлайна, окно этапа, кеш игроков
// и уже принятые ответы на текущий вопрос. Если дедлайн вопроса
// еще впереди, таймер перезапускается на остаток.
func (c *Controller) Resume(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}

	snapshot, err := c.deps.Snapshots.GetLatest(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: no snapshot to resume from", apperrors.ErrValidation)
		}
		return err
	}

	playlist, err := c.deps.Sessions.GetPlaylist(sessionID)
	if err != nil {
		return err
	}
	timeline := BuildTimeline(playlist)
	if snapshot.CurrentIndex < 0 || snapshot.CurrentIndex >= len(timeline) {
		return fmt.Errorf("%w: snapshot index %d is out of timeline range", apperrors.ErrValidation, snapshot.CurrentIndex)
	}

	if c.activeSessionID != "" && c.activeSessionID != sessionID {
		log.Printf("[RuntimeController] Resume сессии %s прерывает активную сессию %s", sessionID, c.activeSessionID)
		c.cancelLocked(c.activeSessionID)
	}

	c.activeSessionID = sessionID
	c.timeline = timeline
	c.currentIndex = snapshot.CurrentIndex
	c.currentEntry = &c.timeline[c.currentIndex]
	c.currentFinalized = false
	c.currentStart = time.Time{}
	c.currentEnd = time.Time{}
	if snapshot.CurrentStart != nil {
		c.currentStart = *snapshot.CurrentStart
	}
	if snapshot.CurrentEnd != nil {
		c.currentEnd = *snapshot.CurrentEnd
	}

	entry := c.currentEntry
	session.Status = entity.SessionStatusLive
	session.FinishedAt = nil
	quizIndex := entry.QuizIndex
	session.ActiveQuizIndex = &quizIndex
	session.ActiveQuestionIndex = nil
	if entry.IsQuestion() {
		questionIndex := entry.QuestionIndex
		session.ActiveQuestionIndex = &questionIndex
	}
	if err := c.deps.Sessions.Update(session); err != nil {
		return err
	}

	if err := c.loadPlayersLocked(sessionID); err != nil {
		return err
	}

	c.clearQuestionCachesLocked()
	if entry.IsQuestion() {
		if err := c.rehydrateAnswersLocked(sessionID, entry.Question); err != nil {
			return err
		}

		now := c.clock.Now()
		switch {
		case !session.ManualOverride && c.currentEnd.After(now):
			remaining := c.currentEnd.Sub(now)
			c.startTimerLocked(sessionID, remaining, time.Duration(entry.GapSeconds)*time.Second)
			log.Printf("[RuntimeController] Сессия %s восстановлена на вопросе, таймер перезапущен на %.1fс",
				sessionID, remaining.Seconds())
		case !c.currentEnd.After(now):
			// Дедлайн прошел, пока процесс был мертв: закрываем вопрос и идем дальше
			log.Printf("[RuntimeController] Сессия %s восстановлена после дедлайна вопроса, переход дальше", sessionID)
			return c.advanceLocked(session)
		}
	}

	c.broadcastAsync(sessionID)
	return nil
}

// RegisterPlayer регистрирует игрока или отмечает реконнект.
// Известный player_id получает свою прежнюю запись (и счет),
// новый игрок - свежий 8-символьный токен.
func (c *Controller) RegisterPlayer(sessionID, name, playerID string) (*entity.SessionPlayer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.deps.Sessions.GetByID(sessionID); err != nil {
		return nil, err
	}
	if c.players[sessionID] == nil {
		c.players[sessionID] = make(map[string]*entity.SessionPlayer)
	}

	if playerID != "" {
		existing, err := c.deps.Players.GetByID(playerID)
		if err == nil && existing.SessionID == sessionID {
			if name != "" {
				existing.Name = name
			}
			existing.Connected = true
			if err := c.deps.Players.Update(existing); err != nil {
				return nil, err
			}
			c.players[sessionID][existing.ID] = existing
			c.broadcastAsync(sessionID)
			return existing, nil
		}
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
	}

	player := &entity.SessionPlayer{
		ID:        entity.NewPlayerID(),
		SessionID: sessionID,
		Name:      name,
		Connected: true,
	}
	if err := c.deps.Players.Create(player); err != nil {
		return nil, err
	}
	c.players[sessionID][player.ID] = player

	log.Printf("[RuntimeController] Игрок %s (%s) присоединился к сессии %s", player.ID, player.Name, sessionID)
	c.broadcastAsync(sessionID)
	return player, nil
}

// DisconnectPlayer помечает игрока отключенным. Его принятые ответы
// сохраняются, но он перестает учитываться в fast-forward.
func (c *Controller) DisconnectPlayer(sessionID, playerID string) {
	c.mu.Lock()
	if player := c.players[sessionID][playerID]; player != nil {
		player.Connected = false
	}
	// Уход последнего не ответившего игрока выполняет условие fast-forward
	if c.activeSessionID == sessionID && c.currentEntry != nil &&
		c.currentEntry.IsQuestion() && !c.currentFinalized {
		c.checkFastForwardLocked(sessionID)
	}
	c.mu.Unlock()

	if err := c.deps.Players.UpdateConnected(playerID, false); err != nil {
		log.Printf("[RuntimeController] Ошибка сохранения отключения игрока %s: %v", playerID, err)
	}
	c.broadcastAsync(sessionID)
}

// AttachSink подключает наблюдателя к рассылке состояния сессии
func (c *Controller) AttachSink(sessionID string, sink Sink) {
	c.broadcaster.Attach(sessionID, sink)
}

// DetachSink отключает наблюдателя
func (c *Controller) DetachSink(sessionID string, sink Sink) {
	c.broadcaster.Detach(sessionID, sink)
}

// SetScoresRevealed управляет показом итоговой таблицы.
// Допустим только для завершенной сессии.
func (c *Controller) SetScoresRevealed(sessionID string, reveal bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		return err
	}
	if !session.IsFinished() {
		return fmt.Errorf("%w: session %s is not finished", apperrors.ErrInvalidTransition, sessionID)
	}
	c.scoresRevealed[sessionID] = reveal
	c.broadcastAsync(sessionID)
	return nil
}

// SubmitAnswer принимает ответ игрока на текущий вопрос. Возвращает false
// без побочных эффектов, если окно закрыто, игрок неизвестен или уже
// отвечал. Мьютекс не удерживается на время обращения к оракулу:
// место игрока в answered-множестве резервируется до разблокировки.
func (c *Controller) SubmitAnswer(sessionID, playerID string, answer *string) bool {
	c.mu.Lock()

	if c.activeSessionID != sessionID || c.currentEntry == nil || !c.currentEntry.IsQuestion() {
		c.mu.Unlock()
		return false
	}
	if c.clock.Now().After(c.currentEnd) {
		c.mu.Unlock()
		return false
	}
	if c.players[sessionID][playerID] == nil {
		c.mu.Unlock()
		return false
	}
	if c.answered[playerID] {
		c.mu.Unlock()
		return false
	}

	// Резервируем место до выхода из-под мьютекса: повторная отправка
	// того же игрока во время обращения к оракулу отклоняется сразу
	c.answered[playerID] = true
	question := c.currentEntry.Question
	generation := c.generation

	c.mu.Unlock()

	isCorrect, delta, result := c.evaluateAnswer(question, answer)

	c.mu.Lock()
	defer c.mu.Unlock()

	row := &entity.SessionAnswer{
		SessionID:   sessionID,
		QuestionID:  question.ID,
		PlayerID:    playerID,
		Answer:      answer,
		IsCorrect:   isCorrect,
		SubmittedAt: c.clock.Now(),
	}
	if err := c.deps.Answers.Create(row); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Проигранная гонка: принятая запись остается нетронутой
			return false
		}
		log.Printf("[RuntimeController] Ошибка записи ответа игрока %s: %v", playerID, err)
		// Записи в БД нет: снимаем резерв, чтобы игрок мог отправить снова
		if c.activeSessionID == sessionID && c.generation == generation {
			delete(c.answered, playerID)
		}
		return false
	}

	if delta > 0 {
		c.addScoreLocked(sessionID, playerID, delta)
	}

	// Если этап сменился, пока оракул думал, кеши вопроса уже чужие
	if c.activeSessionID != sessionID || c.generation != generation {
		return true
	}

	if answer != nil {
		c.answerValues[playerID] = *answer
	}
	c.answerResults[playerID] = result

	c.broadcastAsync(sessionID)
	c.checkFastForwardLocked(sessionID)
	return true
}

// evaluateAnswer вычисляет вердикт и дельту очков для принятого ответа.
// Вызывается без мьютекса. Для closest очки откладываются до финализации.
func (c *Controller) evaluateAnswer(question *entity.Question, answer *string) (isCorrect bool, delta float64, result *bool) {
	if question.IsClosest() {
		// is_correct уточнится при финализации, вердикт пока неизвестен
		return false, 0, nil
	}

	switch question.AnswerType {
	case entity.AnswerTypeMultipleChoice, entity.AnswerTypeNumeric:
		isCorrect = answersMatchExact(question, answer)

	case entity.AnswerTypeText:
		isCorrect = c.gradeTextAnswer(question, answer)

	default:
		// Зарезервированный fallback: непустой ответ засчитывается
		isCorrect = answer != nil
	}

	if isCorrect {
		delta = 1.0
	}
	verdict := isCorrect
	return isCorrect, delta, &verdict
}

// gradeTextAnswer отдает текстовый ответ оракулу; при его отсутствии
// или ошибке сравнивает строки локально
func (c *Controller) gradeTextAnswer(question *entity.Question, answer *string) bool {
	if question.CorrectAnswer == nil || answer == nil || strings.TrimSpace(*answer) == "" {
		return false
	}

	if c.deps.Grader != nil {
		questionText := ""
		if question.Text != nil {
			questionText = *question.Text
		}
		verdict, err := c.deps.Grader.Evaluate(context.Background(), questionText, *question.CorrectAnswer, *answer)
		if err == nil {
			return verdict
		}
		log.Printf("[RuntimeController] Оракул недоступен (%v), локальное сравнение для вопроса %s", err, question.ID)
	}

	return answersMatchFold(question, answer)
}

// State возвращает снапшот состояния сессии
func (c *Controller) State(sessionID string) (*StatePayload, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.deps.Sessions.GetByID(sessionID)
	if err != nil {
		return nil, err
	}

	if c.players[sessionID] == nil {
		// Сессия не в памяти (не запускалась с рестарта): игроки из БД
		stored, err := c.deps.Players.ListBySession(sessionID)
		if err != nil {
			return nil, err
		}
		cache := make(map[string]*entity.SessionPlayer, len(stored))
		for i := range stored {
			cache[stored[i].ID] = &stored[i]
		}
		c.players[sessionID] = cache
	}

	return c.buildStateLocked(session), nil
}

// ActiveSessionID возвращает id активной сессии или пустую строку
func (c *Controller) ActiveSessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeSessionID
}

// advanceLocked - единственная точка перехода между этапами.
// Финализирует уходящий вопрос, двигает курсор, запускает таймер
// нового этапа, пишет снапшот и рассылает состояние.
func (c *Controller) advanceLocked(session *entity.Session) error {
	if c.currentEntry != nil && c.currentEntry.IsQuestion() && !c.currentFinalized {
		c.finalizeCurrentLocked(session.ID)
	}

	c.currentIndex++
	c.generation++
	c.cancelTimerLocked()

	if c.currentIndex >= len(c.timeline) {
		return c.finishLocked(session)
	}

	entry := &c.timeline[c.currentIndex]
	c.currentEntry = entry
	c.currentFinalized = false

	quizIndex := entry.QuizIndex
	session.ActiveQuizIndex = &quizIndex
	session.ActiveQuestionIndex = nil
	if entry.IsQuestion() {
		questionIndex := entry.QuestionIndex
		session.ActiveQuestionIndex = &questionIndex
	}

	now := c.clock.Now()
	c.currentStart = now
	c.currentEnd = time.Time{}
	if entry.IsQuestion() {
		c.currentEnd = now.Add(time.Duration(entry.DurationSeconds) * time.Second)
	}

	c.clearQuestionCachesLocked()

	if err := c.deps.Sessions.Update(session); err != nil {
		return err
	}
	c.writeSnapshotLocked(session, entry)

	if entry.IsQuestion() && !session.ManualOverride {
		c.startTimerLocked(session.ID,
			time.Duration(entry.DurationSeconds)*time.Second,
			time.Duration(entry.GapSeconds)*time.Second)
	}

	log.Printf("[RuntimeController] Сессия %s: этап %d/%d (%s)",
		session.ID, c.currentIndex+1, len(c.timeline), entry.Kind)
	c.broadcastAsync(session.ID)
	return nil
}

// finishLocked завершает сессию после последнего этапа
func (c *Controller) finishLocked(session *entity.Session) error {
	now := c.clock.Now()
	session.Status = entity.SessionStatusFinished
	session.FinishedAt = &now
	session.ActiveQuizIndex = nil
	session.ActiveQuestionIndex = nil

	sessionID := session.ID
	c.activeSessionID = ""
	c.timeline = nil
	c.currentEntry = nil
	c.currentIndex = -1

	if err := c.deps.Sessions.Update(session); err != nil {
		return err
	}

	log.Printf("[RuntimeController] Сессия %s завершена", sessionID)

	if c.deps.Notifier != nil {
		finished := *session
		var standings []entity.SessionPlayer
		for _, p := range c.playersOfLocked(sessionID) {
			standings = append(standings, *p)
		}
		go c.deps.Notifier.SessionFinished(&finished, standings)
	}

	c.broadcastAsync(sessionID)
	return nil
}

// finalizeCurrentLocked финализирует уходящий вопрос ровно один раз
func (c *Controller) finalizeCurrentLocked(sessionID string) {
	entry := c.currentEntry
	if entry == nil || !entry.IsQuestion() || c.currentFinalized {
		return
	}
	if entry.Question.IsClosest() {
		c.finalizeClosestLocked(sessionID, entry.Question)
	}
	c.currentFinalized = true
}

// checkFastForwardLocked проверяет условие fast-forward: все подключенные
// игроки ответили (и подключен хотя бы один). Отключенные игроки не
// учитываются; их принятые ответы остаются.
func (c *Controller) checkFastForwardLocked(sessionID string) {
	connected := 0
	allAnswered := true
	for _, p := range c.players[sessionID] {
		if !p.Connected {
			continue
		}
		connected++
		if !c.answered[p.ID] {
			allAnswered = false
		}
	}
	if connected == 0 || !allAnswered {
		return
	}

	entry := c.currentEntry
	log.Printf("[RuntimeController] Fast-forward сессии %s: все %d подключенных игроков ответили", sessionID, connected)

	c.cancelTimerLocked()
	c.finalizeCurrentLocked(sessionID)
	c.currentEnd = c.clock.Now()
	c.broadcastAsync(sessionID)

	c.startGapAdvanceLocked(sessionID, time.Duration(entry.GapSeconds)*time.Second)
}

// clearQuestionCachesLocked сбрасывает кеши текущего вопроса
func (c *Controller) clearQuestionCachesLocked() {
	c.answered = make(map[string]bool)
	c.answerResults = make(map[string]*bool)
	c.answerValues = make(map[string]string)
	c.closestResults = nil
}

// loadPlayersLocked перечитывает игроков сессии из БД в кеш
func (c *Controller) loadPlayersLocked(sessionID string) error {
	stored, err := c.deps.Players.ListBySession(sessionID)
	if err != nil {
		return err
	}
	cache := make(map[string]*entity.SessionPlayer, len(stored))
	for i := range stored {
		cache[stored[i].ID] = &stored[i]
	}
	c.players[sessionID] = cache
	return nil
}

// rehydrateAnswersLocked восстанавливает answered-множество и кеши
// ответов текущего вопроса из БД (используется при resume)
func (c *Controller) rehydrateAnswersLocked(sessionID string, question *entity.Question) error {
	rows, err := c.deps.Answers.ListForQuestion(sessionID, question.ID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		c.answered[row.PlayerID] = true
		if row.Answer != nil {
			c.answerValues[row.PlayerID] = *row.Answer
		}
		if question.IsClosest() {
			// Вердикт closest неизвестен до финализации
			c.answerResults[row.PlayerID] = nil
		} else {
			verdict := row.IsCorrect
			c.answerResults[row.PlayerID] = &verdict
		}
	}
	return nil
}

// writeSnapshotLocked пишет снапшот текущего этапа (append-only)
func (c *Controller) writeSnapshotLocked(session *entity.Session, entry *TimelineEntry) {
	snapshot := &entity.SessionSnapshot{
		SessionID:           session.ID,
		CurrentIndex:        c.currentIndex,
		CurrentEntryKind:    &entry.Kind,
		ActiveQuizIndex:     session.ActiveQuizIndex,
		ActiveQuestionIndex: session.ActiveQuestionIndex,
		CreatedAt:           c.clock.Now(),
	}
	if entry.Quiz != nil {
		quizID := entry.Quiz.ID
		snapshot.QuizID = &quizID
	}
	if entry.Question != nil {
		questionID := entry.Question.ID
		snapshot.QuestionID = &questionID
	}
	if !c.currentStart.IsZero() {
		start := c.currentStart
		snapshot.CurrentStart = &start
	}
	if !c.currentEnd.IsZero() {
		end := c.currentEnd
		snapshot.CurrentEnd = &end
	}

	if err := c.deps.Snapshots.Create(snapshot); err != nil {
		log.Printf("[RuntimeController] Ошибка записи снапшота сессии %s: %v", session.ID, err)
	}
}

// broadcastAsync собирает снапшот состояния и рассылает его наблюдателям
// отдельной горутиной, не блокируя мьютекс контроллера
func (c *Controller) broadcastAsync(sessionID string) {
	go func() {
		state, err := c.State(sessionID)
		if err != nil {
			log.Printf("[Broadcaster] Ошибка сборки состояния сессии %s: %v", sessionID, err)
			return
		}
		payload, err := json.Marshal(map[string]interface{}{
			"type":  "state",
			"state": state,
		})
		if err != nil {
			log.Printf("[Broadcaster] Ошибка сериализации состояния сессии %s: %v", sessionID, err)
			return
		}
		c.broadcaster.Broadcast(sessionID, payload)
	}()
}
