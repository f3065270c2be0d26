package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Виды записей таймлайна, фиксируемые в снапшотах
const (
	EntryKindQuizIntro = "quiz_intro"
	EntryKindQuestion  = "question"
)

// NewPlayerID возвращает короткий 8-символьный токен игрока
func NewPlayerID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// SessionPlayer представляет игрока сессии.
// Игрок создается при первом подключении и переживает реконнекты:
// при повторном join с тем же id возвращается та же запись.
type SessionPlayer struct {
	ID        string    `gorm:"primaryKey;size:8" json:"id"`
	SessionID string    `gorm:"size:36;not null;index" json:"session_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Score     float64   `gorm:"not null;default:0" json:"score"`
	Connected bool      `gorm:"not null;default:false" json:"connected"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (SessionPlayer) TableName() string {
	return "session_players"
}

// BeforeCreate присваивает короткий токен, если ID не задан
func (p *SessionPlayer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = NewPlayerID()
	}
	return nil
}

// SessionAnswer представляет принятый ответ игрока на вопрос.
// На пару (вопрос, игрок) существует максимум одна запись: повторная
// отправка отклоняется, а не перезаписывает принятую.
// Для closest-вопросов is_correct уточняется при финализации.
type SessionAnswer struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID   string    `gorm:"size:36;not null;index" json:"session_id"`
	QuestionID  string    `gorm:"size:36;not null;index" json:"question_id"`
	PlayerID    string    `gorm:"size:8;not null" json:"player_id"`
	Answer      *string   `gorm:"size:500" json:"answer"`
	IsCorrect   bool      `gorm:"not null;default:false" json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// TableName определяет имя таблицы для GORM
func (SessionAnswer) TableName() string {
	return "session_answers"
}

// BeforeCreate присваивает UUID, если ID не задан
func (a *SessionAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// SessionSnapshot фиксирует позицию таймлайна и окно текущего этапа.
// Снапшоты пишутся на каждом переходе и накапливаются append-only;
// при resume читается только самый свежий.
type SessionSnapshot struct {
	ID                  string     `gorm:"primaryKey;size:36" json:"id"`
	SessionID           string     `gorm:"size:36;not null;index" json:"session_id"`
	CurrentIndex        int        `gorm:"not null" json:"current_index"`
	CurrentEntryKind    *string    `gorm:"size:20" json:"current_entry_kind"`
	QuizID              *string    `gorm:"size:36" json:"quiz_id"`
	QuestionID          *string    `gorm:"size:36" json:"question_id"`
	ActiveQuizIndex     *int       `json:"active_quiz_index"`
	ActiveQuestionIndex *int       `json:"active_question_index"`
	CurrentStart        *time.Time `json:"current_start"`
	CurrentEnd          *time.Time `json:"current_end"`
	CreatedAt           time.Time  `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (SessionSnapshot) TableName() string {
	return "session_snapshots"
}

// BeforeCreate присваивает UUID, если ID не задан
func (s *SessionSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
