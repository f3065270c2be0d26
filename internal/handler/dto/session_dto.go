package dto

import (
	"time"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// SessionResponse - представление сессии в API
type SessionResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Status              string     `json:"status"`
	AutoAdvance         bool       `json:"auto_advance"`
	ManualOverride      bool       `json:"manual_override"`
	ActiveQuizIndex     *int       `json:"active_quiz_index"`
	ActiveQuestionIndex *int       `json:"active_question_index"`
	StartedAt           *time.Time `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at"`
	QuizIDs             []string   `json:"quiz_ids,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// NewSessionResponse преобразует сущность сессии в ответ API
func NewSessionResponse(session *entity.Session) SessionResponse {
	resp := SessionResponse{
		ID:                  session.ID,
		Name:                session.Name,
		Status:              session.Status,
		AutoAdvance:         session.AutoAdvance,
		ManualOverride:      session.ManualOverride,
		ActiveQuizIndex:     session.ActiveQuizIndex,
		ActiveQuestionIndex: session.ActiveQuestionIndex,
		StartedAt:           session.StartedAt,
		FinishedAt:          session.FinishedAt,
		CreatedAt:           session.CreatedAt,
	}
	for _, item := range session.Quizzes {
		resp.QuizIDs = append(resp.QuizIDs, item.QuizID)
	}
	return resp
}

// NewListSessionResponse преобразует список сессий
func NewListSessionResponse(sessions []entity.Session) []SessionResponse {
	result := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		result = append(result, NewSessionResponse(&sessions[i]))
	}
	return result
}

// PlayerResponse - представление игрока в API и welcome-сообщении
type PlayerResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Score     float64 `json:"score"`
	Connected bool    `json:"connected"`
}

// NewPlayerResponse преобразует сущность игрока
func NewPlayerResponse(p *entity.SessionPlayer) PlayerResponse {
	return PlayerResponse{
		ID:        p.ID,
		Name:      p.Name,
		Score:     p.Score,
		Connected: p.Connected,
	}
}
