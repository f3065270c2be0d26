package dto

import (
	"time"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// QuizResponse - представление квиза в API
type QuizResponse struct {
	ID                      string             `json:"id"`
	Name                    string             `json:"name"`
	Description             *string            `json:"description"`
	DefaultQuestionDuration int                `json:"default_question_duration"`
	GapSeconds              int                `json:"gap_seconds"`
	Questions               []QuestionResponse `json:"questions,omitempty"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// QuestionResponse - представление вопроса в API (административный
// контур: correct_answer не скрывается)
type QuestionResponse struct {
	ID              string   `json:"id"`
	QuizID          string   `json:"quiz_id"`
	Text            *string  `json:"text"`
	Images          []string `json:"images"`
	Audio           []string `json:"audio"`
	AnswerType      string   `json:"answer_type"`
	Options         []string `json:"options"`
	CorrectAnswer   *string  `json:"correct_answer"`
	ScoringType     string   `json:"scoring_type"`
	SpeedBonus      bool     `json:"speed_bonus"`
	DurationSeconds int      `json:"duration_seconds"`
	Position        int      `json:"position"`
}

// NewQuizResponse преобразует сущность квиза в ответ API
func NewQuizResponse(quiz *entity.Quiz) QuizResponse {
	resp := QuizResponse{
		ID:                      quiz.ID,
		Name:                    quiz.Name,
		Description:             quiz.Description,
		DefaultQuestionDuration: quiz.DefaultQuestionDuration,
		GapSeconds:              quiz.GapSeconds,
		CreatedAt:               quiz.CreatedAt,
		UpdatedAt:               quiz.UpdatedAt,
	}
	for i := range quiz.Questions {
		resp.Questions = append(resp.Questions, NewQuestionResponse(&quiz.Questions[i]))
	}
	return resp
}

// NewQuestionResponse преобразует сущность вопроса в ответ API
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:              q.ID,
		QuizID:          q.QuizID,
		Text:            q.Text,
		Images:          q.Images,
		Audio:           q.Audio,
		AnswerType:      q.AnswerType,
		Options:         q.Options,
		CorrectAnswer:   q.CorrectAnswer,
		ScoringType:     q.ScoringType,
		SpeedBonus:      q.SpeedBonus,
		DurationSeconds: q.DurationSeconds,
		Position:        q.Position,
	}
}

// NewListQuizResponse преобразует список квизов
func NewListQuizResponse(quizzes []entity.Quiz) []QuizResponse {
	result := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		result = append(result, NewQuizResponse(&quizzes[i]))
	}
	return result
}
