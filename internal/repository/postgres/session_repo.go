package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую сессию
func (r *SessionRepo) Create(session *entity.Session) error {
	return r.db.Create(session).Error
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id string) (*entity.Session, error) {
	var session entity.Session
	err := r.db.First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// List возвращает все сессии
func (r *SessionRepo) List() ([]entity.Session, error) {
	var sessions []entity.Session
	err := r.db.Order("created_at").Find(&sessions).Error
	return sessions, err
}

// Update обновляет сессию
func (r *SessionRepo) Update(session *entity.Session) error {
	return r.db.Save(session).Error
}

// Delete удаляет сессию
func (r *SessionRepo) Delete(id string) error {
	return r.db.Delete(&entity.Session{}, "id = ?", id).Error
}

// AddQuizzes добавляет квизы в плейлист сессии в заданном порядке
func (r *SessionRepo) AddQuizzes(sessionID string, quizIDs []string) error {
	links := make([]entity.SessionQuiz, 0, len(quizIDs))
	for idx, quizID := range quizIDs {
		links = append(links, entity.SessionQuiz{
			SessionID: sessionID,
			QuizID:    quizID,
			Position:  idx,
		})
	}
	if len(links) == 0 {
		return nil
	}
	return r.db.Create(&links).Error
}

// GetPlaylist возвращает записи плейлиста по position с предзагруженными
// квизами и их вопросами (вопросы отсортированы по position)
func (r *SessionRepo) GetPlaylist(sessionID string) ([]entity.SessionQuiz, error) {
	var links []entity.SessionQuiz
	err := r.db.
		Preload("Quiz.Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Quiz").
		Where("session_id = ?", sessionID).
		Order("position").
		Find(&links).Error
	return links, err
}

// DeletePlaylist удаляет записи плейлиста сессии
func (r *SessionRepo) DeletePlaylist(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&entity.SessionQuiz{}).Error
}
