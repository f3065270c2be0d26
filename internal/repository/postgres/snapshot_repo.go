package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// SnapshotRepo реализует repository.SessionSnapshotRepository
type SnapshotRepo struct {
	db *gorm.DB
}

// NewSnapshotRepo создает новый репозиторий снапшотов
func NewSnapshotRepo(db *gorm.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Create записывает новый снапшот (append-only)
func (r *SnapshotRepo) Create(snapshot *entity.SessionSnapshot) error {
	return r.db.Create(snapshot).Error
}

// GetLatest возвращает самый свежий снапшот сессии
func (r *SnapshotRepo) GetLatest(sessionID string) (*entity.SessionSnapshot, error) {
	var snapshot entity.SessionSnapshot
	err := r.db.
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &snapshot, nil
}

// DeleteBySession удаляет все снапшоты сессии (используется при reset)
func (r *SnapshotRepo) DeleteBySession(sessionID string) error {
	return r.db.Where("session_id = ?", sessionID).Delete(&entity.SessionSnapshot{}).Error
}
