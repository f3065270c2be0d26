package repository

import (
	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// SessionRepository определяет методы для работы с сессиями и их плейлистами
type SessionRepository interface {
	Create(session *entity.Session) error
	GetByID(id string) (*entity.Session, error)
	List() ([]entity.Session, error)
	Update(session *entity.Session) error
	Delete(id string) error

	// AddQuizzes добавляет квизы в плейлист сессии в заданном порядке
	AddQuizzes(sessionID string, quizIDs []string) error
	// GetPlaylist возвращает записи плейлиста по position
	// с предзагруженными квизами и их вопросами
	GetPlaylist(sessionID string) ([]entity.SessionQuiz, error)
	DeletePlaylist(sessionID string) error
}

// SessionPlayerRepository определяет методы для работы с игроками сессии
type SessionPlayerRepository interface {
	Create(player *entity.SessionPlayer) error
	GetByID(id string) (*entity.SessionPlayer, error)
	ListBySession(sessionID string) ([]entity.SessionPlayer, error)
	Update(player *entity.SessionPlayer) error
	UpdateScore(id string, score float64) error
	UpdateConnected(id string, connected bool) error
	DeleteBySession(sessionID string) error
}

// SessionAnswerRepository определяет методы для работы с принятыми ответами.
// Create возвращает apperrors.ErrConflict при нарушении уникальности
// (session_id, question_id, player_id).
type SessionAnswerRepository interface {
	Create(answer *entity.SessionAnswer) error
	ListForQuestion(sessionID, questionID string) ([]entity.SessionAnswer, error)
	UpdateIsCorrect(id string, isCorrect bool) error
	DeleteBySession(sessionID string) error
}

// SessionSnapshotRepository определяет методы для работы со снапшотами таймлайна
type SessionSnapshotRepository interface {
	Create(snapshot *entity.SessionSnapshot) error
	// GetLatest возвращает самый свежий снапшот сессии или apperrors.ErrNotFound
	GetLatest(sessionID string) (*entity.SessionSnapshot, error)
	DeleteBySession(sessionID string) error
}
