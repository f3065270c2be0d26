package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// PlayerRepo реализует repository.SessionPlayerRepository
type PlayerRepo struct {
	db *gorm.DB
}

// NewPlayerRepo создает новый репозиторий игроков сессии
func NewPlayerRepo(db *gorm.DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// Create создает нового игрока
func (r *PlayerRepo) Create(player *entity.SessionPlayer) error {
	return r.db.Create(player).Error
}

// GetByID возвращает игрока по ID
func (r *PlayerRepo) GetByID(id string) (*entity.SessionPlayer, error) {
	var player entity.SessionPlayer
	err := r.db.First(&player, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// ListBySession возвращает игроков сессии в порядке регистрации
func (r *PlayerRepo) ListBySession(sessionID string) ([]entity.SessionPlayer, error) {
	var players []entity.SessionPlayer
	err := r.db.Where("session_id = ?", sessionID).Order("created_at").Find(&players).Error
	return players, err
}

// Update обновляет игрока
func (r *PlayerRepo) Update(player *entity.SessionPlayer) error {
	return r.db.Save(player).Error
}

// UpdateScore точечно обновляет накопленный счет игрока
func (r *PlayerRepo) UpdateScore(id string, score float64) error {
	return r.db.Model(&entity.SessionPlayer{}).
		Where("id = ?", id).
		Update("score", score).
		Error
}

// UpdateConnected точечно обновляет флаг подключения
func (r *PlayerRepo) UpdateConnected(id string, connected bool) error {
	return r.db.Model(&entity.SessionPlayer{}).
		Where("id = ?", id).
		Update("connected", connected).
		Error
}

// DeleteBySession удаляет всех игроков сессии (используется при reset)
func (r *PlayerRepo) DeleteBySession(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&entity.SessionPlayer{}).Error
}
