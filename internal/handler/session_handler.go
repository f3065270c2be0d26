package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizhost-api/internal/handler/dto"
	"github.com/yourusername/quizhost-api/internal/runtime"
	"github.com/yourusername/quizhost-api/internal/service"
)

// SessionHandler обрабатывает административные запросы к сессиям
// и проксирует команды ведущего в контроллер
type SessionHandler struct {
	sessionService *service.SessionService
	controller     *runtime.Controller
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionService *service.SessionService, controller *runtime.Controller) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		controller:     controller,
	}
}

// CreateSessionRequest представляет запрос на создание сессии
type CreateSessionRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	QuizIDs     []string `json:"quiz_ids" binding:"required,min=1"`
	AutoAdvance *bool    `json:"auto_advance"`
}

// CreateSession создает черновик сессии с плейлистом
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	autoAdvance := true
	if req.AutoAdvance != nil {
		autoAdvance = *req.AutoAdvance
	}

	session, err := h.sessionService.CreateSession(service.SessionInput{
		Name:        req.Name,
		QuizIDs:     req.QuizIDs,
		AutoAdvance: autoAdvance,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

// ListSessions возвращает все сессии
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.sessionService.ListSessions()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListSessionResponse(sessions))
}

// GetSession возвращает сессию
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.sessionService.GetSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// GetState возвращает полный снапшот состояния сессии
func (h *SessionHandler) GetState(c *gin.Context) {
	state, err := h.controller.State(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// StartSession запускает сессию
func (h *SessionHandler) StartSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.controller.Start(sessionID); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

// ResumeSession восстанавливает сессию из последнего снапшота
func (h *SessionHandler) ResumeSession(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.controller.Resume(sessionID); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

// ForceNext принудительно двигает таймлайн
func (h *SessionHandler) ForceNext(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.controller.ForceNext(sessionID); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

// SetManual включает/снимает ручное управление (?manual=<bool>)
func (h *SessionHandler) SetManual(c *gin.Context) {
	manual, err := strconv.ParseBool(c.DefaultQuery("manual", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid manual parameter"})
		return
	}

	sessionID := c.Param("session_id")
	if err := h.controller.SetManual(sessionID, manual); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

// ResetSession останавливает сессию и возвращает ее в черновик
func (h *SessionHandler) ResetSession(c *gin.Context) {
	session, err := h.sessionService.ResetSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(session))
}

// RevealScores управляет показом итоговой таблицы (?reveal=<bool>)
func (h *SessionHandler) RevealScores(c *gin.Context) {
	reveal, err := strconv.ParseBool(c.DefaultQuery("reveal", "true"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reveal parameter"})
		return
	}

	sessionID := c.Param("session_id")
	if err := h.controller.SetScoresRevealed(sessionID, reveal); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c, sessionID)
}

// DeleteSession останавливает и удаляет сессию
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessionService.DeleteSession(c.Param("session_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// DuplicateSession создает черновую копию сессии
func (h *SessionHandler) DuplicateSession(c *gin.Context) {
	session, err := h.sessionService.DuplicateSession(c.Param("session_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

func (h *SessionHandler) respondState(c *gin.Context, sessionID string) {
	state, err := h.controller.State(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}
