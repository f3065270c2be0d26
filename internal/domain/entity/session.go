package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Константы статусов сессии
const (
	SessionStatusDraft    = "draft"
	SessionStatusLive     = "live"
	SessionStatusFinished = "finished"
)

// Session представляет игровую сессию: плейлист квизов,
// который ведущий проигрывает для подключенных игроков.
type Session struct {
	ID                  string        `gorm:"primaryKey;size:36" json:"id"`
	Name                string        `gorm:"size:200;not null" json:"name"`
	Status              string        `gorm:"size:20;not null;default:'draft';index" json:"status"`
	AutoAdvance         bool          `gorm:"not null;default:true" json:"auto_advance"`
	ManualOverride      bool          `gorm:"not null;default:false" json:"manual_override"`
	ActiveQuizIndex     *int          `json:"active_quiz_index"`
	ActiveQuestionIndex *int          `json:"active_question_index"`
	StartedAt           *time.Time    `json:"started_at,omitempty"`
	FinishedAt          *time.Time    `json:"finished_at,omitempty"`
	Quizzes             []SessionQuiz `gorm:"foreignKey:SessionID" json:"quizzes,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Session) TableName() string {
	return "sessions"
}

// BeforeCreate присваивает UUID, если ID не задан
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsLive проверяет, идет ли сессия прямо сейчас
func (s *Session) IsLive() bool {
	return s.Status == SessionStatusLive
}

// IsFinished проверяет, завершена ли сессия
func (s *Session) IsFinished() bool {
	return s.Status == SessionStatusFinished
}

// SessionQuiz связывает сессию с квизом и задает порядок в плейлисте
type SessionQuiz struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	SessionID string `gorm:"size:36;not null;index" json:"session_id"`
	QuizID    string `gorm:"size:36;not null" json:"quiz_id"`
	Position  int    `gorm:"not null" json:"position"`
	Quiz      *Quiz  `gorm:"foreignKey:QuizID" json:"quiz,omitempty"`
}

// TableName определяет имя таблицы для GORM
func (SessionQuiz) TableName() string {
	return "session_quizzes"
}

// BeforeCreate присваивает UUID, если ID не задан
func (sq *SessionQuiz) BeforeCreate(tx *gorm.DB) error {
	if sq.ID == "" {
		sq.ID = uuid.NewString()
	}
	return nil
}
