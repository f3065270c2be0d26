package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// QuestionRepo реализует repository.QuestionRepository
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo создает новый репозиторий вопросов
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create создает новый вопрос
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch создает несколько вопросов за один запрос
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// GetByID возвращает вопрос по ID
func (r *QuestionRepo) GetByID(id string) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// ListByQuiz возвращает вопросы квиза по position
func (r *QuestionRepo) ListByQuiz(quizID string) ([]entity.Question, error) {
	var questions []entity.Question
	err := r.db.Where("quiz_id = ?", quizID).Order("position").Find(&questions).Error
	return questions, err
}

// Update обновляет вопрос
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}

// Delete удаляет вопрос
func (r *QuestionRepo) Delete(id string) error {
	return r.db.Delete(&entity.Question{}, "id = ?", id).Error
}

// UpdatePositions выставляет позиции вопросов квиза в порядке orderedIDs
func (r *QuestionRepo) UpdatePositions(quizID string, orderedIDs []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			err := tx.Model(&entity.Question{}).
				Where("id = ? AND quiz_id = ?", id, quizID).
				Update("position", idx).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}
