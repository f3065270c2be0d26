package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	"github.com/yourusername/quizhost-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
	"github.com/yourusername/quizhost-api/internal/runtime"
)

// SessionService управляет жизненным циклом сессий вокруг контроллера:
// создание, плейлисты, сброс, удаление, дублирование
type SessionService struct {
	sessionRepo  repository.SessionRepository
	playerRepo   repository.SessionPlayerRepository
	answerRepo   repository.SessionAnswerRepository
	snapshotRepo repository.SessionSnapshotRepository
	quizRepo     repository.QuizRepository
	controller   *runtime.Controller
}

// NewSessionService создает новый сервис сессий
func NewSessionService(
	sessionRepo repository.SessionRepository,
	playerRepo repository.SessionPlayerRepository,
	answerRepo repository.SessionAnswerRepository,
	snapshotRepo repository.SessionSnapshotRepository,
	quizRepo repository.QuizRepository,
	controller *runtime.Controller,
) *SessionService {
	return &SessionService{
		sessionRepo:  sessionRepo,
		playerRepo:   playerRepo,
		answerRepo:   answerRepo,
		snapshotRepo: snapshotRepo,
		quizRepo:     quizRepo,
		controller:   controller,
	}
}

// SessionInput - параметры создания сессии
type SessionInput struct {
	Name        string
	QuizIDs     []string
	AutoAdvance bool
}

// CreateSession создает черновик сессии с плейлистом квизов
func (s *SessionService) CreateSession(input SessionInput) (*entity.Session, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: session name is required", apperrors.ErrValidation)
	}
	if len(input.QuizIDs) == 0 {
		return nil, fmt.Errorf("%w: session needs at least one quiz", apperrors.ErrValidation)
	}
	for _, quizID := range input.QuizIDs {
		if _, err := s.quizRepo.GetByID(quizID); err != nil {
			return nil, fmt.Errorf("quiz %s: %w", quizID, err)
		}
	}

	session := &entity.Session{
		Name:        strings.TrimSpace(input.Name),
		Status:      entity.SessionStatusDraft,
		AutoAdvance: input.AutoAdvance,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}
	if err := s.sessionRepo.AddQuizzes(session.ID, input.QuizIDs); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByID(session.ID)
}

// GetSession возвращает сессию по id
func (s *SessionService) GetSession(id string) (*entity.Session, error) {
	return s.sessionRepo.GetByID(id)
}

// ListSessions возвращает все сессии
func (s *SessionService) ListSessions() ([]entity.Session, error) {
	return s.sessionRepo.List()
}

// GetPlaylist возвращает плейлист сессии с квизами и вопросами
func (s *SessionService) GetPlaylist(sessionID string) ([]entity.SessionQuiz, error) {
	if _, err := s.sessionRepo.GetByID(sessionID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetPlaylist(sessionID)
}

// ResetSession останавливает сессию и возвращает ее в черновик:
// игроки, ответы и снапшоты удаляются, плейлист сохраняется
func (s *SessionService) ResetSession(id string) (*entity.Session, error) {
	session, err := s.sessionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	s.controller.Cancel(id)

	if err := s.answerRepo.DeleteBySession(id); err != nil {
		return nil, err
	}
	if err := s.snapshotRepo.DeleteBySession(id); err != nil {
		return nil, err
	}
	if err := s.playerRepo.DeleteBySession(id); err != nil {
		return nil, err
	}

	session.Status = entity.SessionStatusDraft
	session.ManualOverride = false
	session.ActiveQuizIndex = nil
	session.ActiveQuestionIndex = nil
	session.StartedAt = nil
	session.FinishedAt = nil
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	log.Printf("[SessionService] Сессия %s сброшена в черновик", id)
	return session, nil
}

// DeleteSession останавливает и полностью удаляет сессию
func (s *SessionService) DeleteSession(id string) error {
	if _, err := s.sessionRepo.GetByID(id); err != nil {
		return err
	}

	s.controller.Cancel(id)

	if err := s.answerRepo.DeleteBySession(id); err != nil {
		return err
	}
	if err := s.snapshotRepo.DeleteBySession(id); err != nil {
		return err
	}
	if err := s.playerRepo.DeleteBySession(id); err != nil {
		return err
	}
	if err := s.sessionRepo.DeletePlaylist(id); err != nil {
		return err
	}
	return s.sessionRepo.Delete(id)
}

// DuplicateSession создает черновую копию сессии с тем же плейлистом
func (s *SessionService) DuplicateSession(id string) (*entity.Session, error) {
	original, err := s.sessionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	playlist, err := s.sessionRepo.GetPlaylist(id)
	if err != nil {
		return nil, err
	}

	copySession := &entity.Session{
		Name:        original.Name + " (copy)",
		Status:      entity.SessionStatusDraft,
		AutoAdvance: original.AutoAdvance,
	}
	if err := s.sessionRepo.Create(copySession); err != nil {
		return nil, err
	}

	quizIDs := make([]string, 0, len(playlist))
	for _, item := range playlist {
		quizIDs = append(quizIDs, item.QuizID)
	}
	if len(quizIDs) > 0 {
		if err := s.sessionRepo.AddQuizzes(copySession.ID, quizIDs); err != nil {
			return nil, err
		}
	}
	return s.sessionRepo.GetByID(copySession.ID)
}
