package runtime

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// ============================================================================
// In-memory фейки хранилища для тестов контроллера.
// Потокобезопасны: рассылка и таймеры обращаются к ним из горутин.
// ============================================================================

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]entity.Session
	playlist map[string][]entity.SessionQuiz
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions: make(map[string]entity.Session),
		playlist: make(map[string][]entity.SessionQuiz),
	}
}

func (r *fakeSessionRepo) Create(session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) GetByID(id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copySession := session
	return &copySession, nil
}

func (r *fakeSessionRepo) List() ([]entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]entity.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		result = append(result, s)
	}
	return result, nil
}

func (r *fakeSessionRepo) Update(session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *fakeSessionRepo) AddQuizzes(sessionID string, quizIDs []string) error {
	return fmt.Errorf("not implemented in fake")
}

func (r *fakeSessionRepo) GetPlaylist(sessionID string) ([]entity.SessionQuiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playlist[sessionID], nil
}

func (r *fakeSessionRepo) DeletePlaylist(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.playlist, sessionID)
	return nil
}

func (r *fakeSessionRepo) setPlaylist(sessionID string, quizzes ...*entity.Quiz) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []entity.SessionQuiz
	for i, quiz := range quizzes {
		items = append(items, entity.SessionQuiz{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			QuizID:    quiz.ID,
			Position:  i,
			Quiz:      quiz,
		})
	}
	r.playlist[sessionID] = items
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	players map[string]entity.SessionPlayer
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: make(map[string]entity.SessionPlayer)}
}

func (r *fakePlayerRepo) Create(player *entity.SessionPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player.ID == "" {
		player.ID = entity.NewPlayerID()
	}
	player.CreatedAt = time.Now().Add(time.Duration(len(r.players)) * time.Millisecond)
	r.players[player.ID] = *player
	return nil
}

func (r *fakePlayerRepo) GetByID(id string) (*entity.SessionPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copyPlayer := player
	return &copyPlayer, nil
}

func (r *fakePlayerRepo) ListBySession(sessionID string) ([]entity.SessionPlayer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.SessionPlayer
	for _, p := range r.players {
		if p.SessionID == sessionID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *fakePlayerRepo) Update(player *entity.SessionPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[player.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.players[player.ID] = *player
	return nil
}

func (r *fakePlayerRepo) UpdateScore(id string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	player.Score = score
	r.players[id] = player
	return nil
}

func (r *fakePlayerRepo) UpdateConnected(id string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player, ok := r.players[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	player.Connected = connected
	r.players[id] = player
	return nil
}

func (r *fakePlayerRepo) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, p := range r.players {
		if p.SessionID == sessionID {
			delete(r.players, id)
		}
	}
	return nil
}

type fakeAnswerRepo struct {
	mu        sync.Mutex
	rows      []entity.SessionAnswer
	createErr error
}

func newFakeAnswerRepo() *fakeAnswerRepo {
	return &fakeAnswerRepo{}
}

// failNextCreate заставляет следующий Create вернуть ошибку хранилища
func (r *fakeAnswerRepo) failNextCreate(err error) {
	r.mu.Lock()
	r.createErr = err
	r.mu.Unlock()
}

func (r *fakeAnswerRepo) Create(answer *entity.SessionAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		err := r.createErr
		r.createErr = nil
		return err
	}
	for _, existing := range r.rows {
		if existing.SessionID == answer.SessionID &&
			existing.QuestionID == answer.QuestionID &&
			existing.PlayerID == answer.PlayerID {
			return fmt.Errorf("%w: duplicate answer", apperrors.ErrConflict)
		}
	}
	if answer.ID == "" {
		answer.ID = uuid.NewString()
	}
	r.rows = append(r.rows, *answer)
	return nil
}

func (r *fakeAnswerRepo) ListForQuestion(sessionID, questionID string) ([]entity.SessionAnswer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []entity.SessionAnswer
	for _, row := range r.rows {
		if row.SessionID == sessionID && row.QuestionID == questionID {
			result = append(result, row)
		}
	}
	return result, nil
}

func (r *fakeAnswerRepo) UpdateIsCorrect(id string, isCorrect bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == id {
			r.rows[i].IsCorrect = isCorrect
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeAnswerRepo) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entity.SessionAnswer
	for _, row := range r.rows {
		if row.SessionID != sessionID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *fakeAnswerRepo) count(sessionID, questionID string) int {
	rows, _ := r.ListForQuestion(sessionID, questionID)
	return len(rows)
}

type fakeSnapshotRepo struct {
	mu        sync.Mutex
	snapshots []entity.SessionSnapshot
}

func newFakeSnapshotRepo() *fakeSnapshotRepo {
	return &fakeSnapshotRepo{}
}

func (r *fakeSnapshotRepo) Create(snapshot *entity.SessionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	r.snapshots = append(r.snapshots, *snapshot)
	return nil
}

func (r *fakeSnapshotRepo) GetLatest(sessionID string) (*entity.SessionSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.snapshots) - 1; i >= 0; i-- {
		if r.snapshots[i].SessionID == sessionID {
			copySnapshot := r.snapshots[i]
			return &copySnapshot, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeSnapshotRepo) DeleteBySession(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []entity.SessionSnapshot
	for _, s := range r.snapshots {
		if s.SessionID != sessionID {
			kept = append(kept, s)
		}
	}
	r.snapshots = kept
	return nil
}

// fakeGrader возвращает заранее заданный вердикт или ошибку
type fakeGrader struct {
	verdict bool
	err     error
	calls   int
	mu      sync.Mutex
}

func (g *fakeGrader) Evaluate(_ context.Context, _, _, _ string) (bool, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.verdict, g.err
}
