package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizhost-api/internal/handler/dto"
	"github.com/yourusername/quizhost-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с квизами и вопросами
type QuizHandler struct {
	quizService   *service.QuizService
	importService *service.ImportService
}

// NewQuizHandler создает новый обработчик квизов
func NewQuizHandler(quizService *service.QuizService, importService *service.ImportService) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		importService: importService,
	}
}

// QuizRequest представляет запрос на создание/обновление квиза
type QuizRequest struct {
	Name                    string  `json:"name" binding:"required,min=1,max=200"`
	Description             *string `json:"description" binding:"omitempty,max=1000"`
	DefaultQuestionDuration int     `json:"default_question_duration" binding:"omitempty,min=5"`
	GapSeconds              int     `json:"gap_seconds" binding:"omitempty,min=0"`
}

func (r *QuizRequest) toInput() service.QuizInput {
	duration := r.DefaultQuestionDuration
	if duration == 0 {
		duration = 30
	}
	return service.QuizInput{
		Name:                    r.Name,
		Description:             r.Description,
		DefaultQuestionDuration: duration,
		GapSeconds:              r.GapSeconds,
	}
}

// CreateQuiz обрабатывает запрос на создание квиза
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.CreateQuiz(req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz))
}

// ListQuizzes возвращает все квизы
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	quizzes, err := h.quizService.ListQuizzes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewListQuizResponse(quizzes))
}

// GetQuiz возвращает квиз с вопросами
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quiz, err := h.quizService.GetQuizWithQuestions(c.Param("quiz_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// UpdateQuiz обновляет параметры квиза
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.UpdateQuiz(c.Param("quiz_id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// DeleteQuiz удаляет квиз вместе с вопросами
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	if err := h.quizService.DeleteQuiz(c.Param("quiz_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// QuestionRequest представляет запрос на создание/обновление вопроса
type QuestionRequest struct {
	Text            *string  `json:"text" binding:"omitempty,max=1000"`
	Images          []string `json:"images"`
	Audio           []string `json:"audio"`
	AnswerType      string   `json:"answer_type" binding:"required"`
	Options         []string `json:"options"`
	CorrectAnswer   *string  `json:"correct_answer" binding:"omitempty,max=500"`
	ScoringType     string   `json:"scoring_type"`
	SpeedBonus      bool     `json:"speed_bonus"`
	DurationSeconds int      `json:"duration_seconds" binding:"omitempty,min=5"`
}

func (r *QuestionRequest) toInput() service.QuestionInput {
	return service.QuestionInput{
		Text:            r.Text,
		Images:          r.Images,
		Audio:           r.Audio,
		AnswerType:      r.AnswerType,
		Options:         r.Options,
		CorrectAnswer:   r.CorrectAnswer,
		ScoringType:     r.ScoringType,
		SpeedBonus:      r.SpeedBonus,
		DurationSeconds: r.DurationSeconds,
	}
}

// AddQuestion добавляет вопрос в конец квиза
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.quizService.AddQuestion(c.Param("quiz_id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// UpdateQuestion обновляет вопрос
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question, err := h.quizService.UpdateQuestion(c.Param("question_id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion удаляет вопрос и уплотняет позиции
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	if err := h.quizService.DeleteQuestion(c.Param("question_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ReorderRequest представляет запрос на смену порядка вопросов
type ReorderRequest struct {
	QuestionIDs []string `json:"question_ids" binding:"required,min=1"`
}

// ReorderQuestions выставляет новый порядок вопросов квиза
func (h *QuizHandler) ReorderQuestions(c *gin.Context) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quizService.ReorderQuestions(c.Param("quiz_id"), req.QuestionIDs); err != nil {
		respondError(c, err)
		return
	}

	quiz, err := h.quizService.GetQuizWithQuestions(c.Param("quiz_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz))
}

// ImportQuiz создает квиз из загруженного XLSX-файла.
// Multipart-поля: file (обязательно), name, default_question_duration, gap_seconds.
func (h *QuizHandler) ImportQuiz(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	input := service.QuizInput{Name: name}
	if raw := c.PostForm("default_question_duration"); raw != "" {
		if err := bindIntForm(raw, &input.DefaultQuestionDuration); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid default_question_duration"})
			return
		}
	}
	if raw := c.PostForm("gap_seconds"); raw != "" {
		if err := bindIntForm(raw, &input.GapSeconds); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid gap_seconds"})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	quiz, err := h.importService.ImportQuizXLSX(name, file, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz))
}
