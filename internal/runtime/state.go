package runtime

import (
	"time"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// StatePayload - полный снапшот состояния сессии, рассылаемый наблюдателям
// и отдаваемый административным API
type StatePayload struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Status              string  `json:"status"`
	ManualOverride      bool    `json:"manual_override"`
	ActiveQuizIndex     *int    `json:"active_quiz_index"`
	ActiveQuestionIndex *int    `json:"active_question_index"`
	Stage               *string `json:"stage"`

	QuizIntro *QuizIntroState `json:"quiz_intro"`
	Question  *QuestionState  `json:"question"`

	Players        []PlayerState    `json:"players"`
	Now            time.Time        `json:"now"`
	ScoresRevealed bool             `json:"scores_revealed"`
	Answers        map[string]*bool `json:"answers"`
	AnswerValues   map[string]string `json:"answer_values"`
	ClosestResults []ClosestResult  `json:"closest_results"`
}

// QuizIntroState описывает этап интро квиза
type QuizIntroState struct {
	QuizIndex       int     `json:"quiz_index"`
	QuizID          string  `json:"quiz_id"`
	QuizName        string  `json:"quiz_name"`
	QuizDescription *string `json:"quiz_description"`
	QuestionCount   int     `json:"question_count"`
}

// QuestionState описывает активный вопрос.
// CorrectAnswer скрыт (null) до момента reveal.
type QuestionState struct {
	ID               string    `json:"id"`
	QuizIndex        int       `json:"quiz_index"`
	QuestionIndex    int       `json:"question_index"`
	Text             *string   `json:"text"`
	Images           []string  `json:"images"`
	Audio            []string  `json:"audio"`
	AnswerType       string    `json:"answer_type"`
	Options          []string  `json:"options"`
	ScoringType      string    `json:"scoring_type"`
	SpeedBonus       bool      `json:"speed_bonus"`
	DurationSeconds  int       `json:"duration_seconds"`
	StartedAt        time.Time `json:"started_at"`
	ClosesAt         time.Time `json:"closes_at"`
	RemainingSeconds float64   `json:"remaining_seconds"`
	Revealed         bool      `json:"revealed"`
	CorrectAnswer    *string   `json:"correct_answer"`
}

// PlayerState описывает игрока в снапшоте состояния
type PlayerState struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Connected bool    `json:"connected"`
}

// ClosestResult - позиция игрока в рейтинге closest-вопроса,
// отсортированном по возрастанию расстояния до правильного числа
type ClosestResult struct {
	PlayerID string  `json:"player_id"`
	Answer   string  `json:"answer"`
	Distance float64 `json:"distance"`
	IsExact  bool    `json:"is_exact"`
}

// buildStateLocked собирает снапшот состояния. Вызывается под мьютексом
// контроллера: активная сессия читается из памяти, остальное - из БД.
func (c *Controller) buildStateLocked(session *entity.Session) *StatePayload {
	now := c.clock.Now()

	payload := &StatePayload{
		ID:                  session.ID,
		Name:                session.Name,
		Status:              session.Status,
		ManualOverride:      session.ManualOverride,
		ActiveQuizIndex:     session.ActiveQuizIndex,
		ActiveQuestionIndex: session.ActiveQuestionIndex,
		Now:                 now,
		ScoresRevealed:      c.scoresRevealed[session.ID],
		Answers:             map[string]*bool{},
		AnswerValues:        map[string]string{},
		ClosestResults:      []ClosestResult{},
	}

	for _, p := range c.playersOfLocked(session.ID) {
		payload.Players = append(payload.Players, PlayerState{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected,
		})
	}

	if c.activeSessionID != session.ID || c.currentEntry == nil {
		return payload
	}

	entry := c.currentEntry
	payload.Stage = &entry.Kind

	for pid, res := range c.answerResults {
		payload.Answers[pid] = res
	}
	for pid, val := range c.answerValues {
		payload.AnswerValues[pid] = val
	}
	payload.ClosestResults = append(payload.ClosestResults, c.closestResults...)

	switch entry.Kind {
	case entity.EntryKindQuizIntro:
		payload.QuizIntro = &QuizIntroState{
			QuizIndex:       entry.QuizIndex,
			QuizID:          entry.Quiz.ID,
			QuizName:        entry.Quiz.Name,
			QuizDescription: entry.Quiz.Description,
			QuestionCount:   len(entry.Questions),
		}

	case entity.EntryKindQuestion:
		q := entry.Question

		remaining := c.currentEnd.Sub(now).Seconds()
		if remaining < 0 {
			remaining = 0
		}
		revealed := !now.Before(c.currentEnd)

		state := &QuestionState{
			ID:               q.ID,
			QuizIndex:        entry.QuizIndex,
			QuestionIndex:    entry.QuestionIndex,
			Text:             q.Text,
			Images:           q.Images,
			Audio:            q.Audio,
			AnswerType:       q.AnswerType,
			Options:          q.Options,
			ScoringType:      q.ScoringType,
			SpeedBonus:       q.SpeedBonus,
			DurationSeconds:  entry.DurationSeconds,
			StartedAt:        c.currentStart,
			ClosesAt:         c.currentEnd,
			RemainingSeconds: remaining,
			Revealed:         revealed,
		}
		if revealed {
			state.CorrectAnswer = q.CorrectAnswer
		}
		payload.Question = state
	}

	return payload
}

// playersOfLocked возвращает игроков сессии в стабильном порядке создания
func (c *Controller) playersOfLocked(sessionID string) []*entity.SessionPlayer {
	cache := c.players[sessionID]
	result := make([]*entity.SessionPlayer, 0, len(cache))
	for _, p := range cache {
		result = append(result, p)
	}
	// Порядок map недетерминирован, сортируем по времени создания
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].CreatedAt.Before(result[j-1].CreatedAt); j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}
	return result
}
