package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// AnswerRepo реализует repository.SessionAnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Create записывает принятый ответ.
// Уникальный индекс (session_id, question_id, player_id) гарантирует
// максимум одну запись на игрока и вопрос; нарушение уникальности
// (гонка двух отправок) возвращается как apperrors.ErrConflict.
func (r *AnswerRepo) Create(answer *entity.SessionAnswer) error {
	if err := r.db.Create(answer).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: duplicate answer for question %s by player %s",
				apperrors.ErrConflict, answer.QuestionID, answer.PlayerID)
		}
		return err
	}
	return nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}

// ListForQuestion возвращает ответы на вопрос в порядке отправки
func (r *AnswerRepo) ListForQuestion(sessionID, questionID string) ([]entity.SessionAnswer, error) {
	var answers []entity.SessionAnswer
	err := r.db.
		Where("session_id = ? AND question_id = ?", sessionID, questionID).
		Order("submitted_at").
		Find(&answers).Error
	return answers, err
}

// UpdateIsCorrect патчит is_correct принятого ответа (финализация closest)
func (r *AnswerRepo) UpdateIsCorrect(id string, isCorrect bool) error {
	return r.db.Model(&entity.SessionAnswer{}).
		Where("id = ?", id).
		Update("is_correct", isCorrect).
		Error
}

// DeleteBySession удаляет все ответы сессии (используется при reset)
func (r *AnswerRepo) DeleteBySession(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&entity.SessionAnswer{}).Error
}
