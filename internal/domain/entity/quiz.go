package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Типы ответов на вопрос
const (
	AnswerTypeMultipleChoice = "multiple_choice"
	AnswerTypeText           = "text"
	AnswerTypeNumeric        = "numeric"
)

// Типы подсчета очков
const (
	ScoringTypeExact   = "exact"
	ScoringTypeClosest = "closest"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Quiz представляет квиз: упорядоченный набор вопросов с настройками таймингов.
// Во время live-сессии квиз считается неизменяемым.
type Quiz struct {
	ID                      string     `gorm:"primaryKey;size:36" json:"id"`
	Name                    string     `gorm:"size:200;not null" json:"name"`
	Description             *string    `gorm:"size:1000" json:"description,omitempty"`
	DefaultQuestionDuration int        `gorm:"not null;default:30" json:"default_question_duration"`
	GapSeconds              int        `gorm:"not null;default:3" json:"gap_seconds"`
	Questions               []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// BeforeCreate присваивает UUID, если ID не задан
func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// Question представляет вопрос квиза
type Question struct {
	ID              string      `gorm:"primaryKey;size:36" json:"id"`
	QuizID          string      `gorm:"size:36;not null;index" json:"quiz_id"`
	Text            *string     `gorm:"size:1000" json:"text,omitempty"`
	Images          StringArray `gorm:"type:jsonb;not null" json:"images"`
	Audio           StringArray `gorm:"type:jsonb;not null" json:"audio"`
	AnswerType      string      `gorm:"size:20;not null" json:"answer_type"`
	Options         StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer   *string     `gorm:"size:500" json:"correct_answer,omitempty"`
	ScoringType     string      `gorm:"size:20;not null;default:'exact'" json:"scoring_type"`
	SpeedBonus      bool        `gorm:"not null;default:false" json:"speed_bonus"`
	DurationSeconds int         `gorm:"not null;default:30" json:"duration_seconds"`
	Position        int         `gorm:"not null;default:0" json:"position"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// BeforeCreate присваивает UUID, если ID не задан
func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// IsClosest проверяет, оценивается ли вопрос по близости к правильному числу.
// Числовые вопросы без явного scoring_type считаются closest (legacy-путь).
func (q *Question) IsClosest() bool {
	if q.ScoringType == ScoringTypeClosest {
		return true
	}
	return q.AnswerType == AnswerTypeNumeric && q.ScoringType == ""
}
