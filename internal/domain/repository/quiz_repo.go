package repository

import (
	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// QuizRepository определяет методы для работы с квизами
type QuizRepository interface {
	Create(quiz *entity.Quiz) error
	GetByID(id string) (*entity.Quiz, error)
	GetWithQuestions(id string) (*entity.Quiz, error)
	List() ([]entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	Delete(id string) error
}

// QuestionRepository определяет методы для работы с вопросами
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id string) (*entity.Question, error)
	ListByQuiz(quizID string) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id string) error
	// UpdatePositions выставляет позиции вопросов квиза в порядке orderedIDs
	UpdatePositions(quizID string, orderedIDs []string) error
}
