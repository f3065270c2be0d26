package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	"github.com/yourusername/quizhost-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// Минимальная длительность вопроса в секундах
const minQuestionDuration = 5

// QuizService предоставляет методы для управления квизами и вопросами
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
}

// NewQuizService создает новый сервис квизов
func NewQuizService(quizRepo repository.QuizRepository, questionRepo repository.QuestionRepository) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
	}
}

// QuizInput - параметры создания/обновления квиза
type QuizInput struct {
	Name                    string
	Description             *string
	DefaultQuestionDuration int
	GapSeconds              int
}

// CreateQuiz создает новый квиз
func (s *QuizService) CreateQuiz(input QuizInput) (*entity.Quiz, error) {
	if err := validateQuizInput(input); err != nil {
		return nil, err
	}

	quiz := &entity.Quiz{
		Name:                    strings.TrimSpace(input.Name),
		Description:             input.Description,
		DefaultQuestionDuration: input.DefaultQuestionDuration,
		GapSeconds:              input.GapSeconds,
	}
	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// GetQuiz возвращает квиз без вопросов
func (s *QuizService) GetQuiz(id string) (*entity.Quiz, error) {
	return s.quizRepo.GetByID(id)
}

// GetQuizWithQuestions возвращает квиз с вопросами в порядке position
func (s *QuizService) GetQuizWithQuestions(id string) (*entity.Quiz, error) {
	return s.quizRepo.GetWithQuestions(id)
}

// ListQuizzes возвращает все квизы
func (s *QuizService) ListQuizzes() ([]entity.Quiz, error) {
	return s.quizRepo.List()
}

// UpdateQuiz обновляет параметры квиза
func (s *QuizService) UpdateQuiz(id string, input QuizInput) (*entity.Quiz, error) {
	if err := validateQuizInput(input); err != nil {
		return nil, err
	}

	quiz, err := s.quizRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	quiz.Name = strings.TrimSpace(input.Name)
	quiz.Description = input.Description
	quiz.DefaultQuestionDuration = input.DefaultQuestionDuration
	quiz.GapSeconds = input.GapSeconds
	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// DeleteQuiz удаляет квиз вместе с вопросами
func (s *QuizService) DeleteQuiz(id string) error {
	return s.quizRepo.Delete(id)
}

// QuestionInput - параметры создания/обновления вопроса
type QuestionInput struct {
	Text            *string
	Images          []string
	Audio           []string
	AnswerType      string
	Options         []string
	CorrectAnswer   *string
	ScoringType     string
	SpeedBonus      bool
	DurationSeconds int
}

// AddQuestion добавляет вопрос в конец квиза
func (s *QuizService) AddQuestion(quizID string, input QuestionInput) (*entity.Question, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}

	if input.DurationSeconds == 0 {
		input.DurationSeconds = quiz.DefaultQuestionDuration
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	existing, err := s.questionRepo.ListByQuiz(quizID)
	if err != nil {
		return nil, err
	}

	question := &entity.Question{
		QuizID:          quizID,
		Text:            input.Text,
		Images:          entity.StringArray(input.Images),
		Audio:           entity.StringArray(input.Audio),
		AnswerType:      input.AnswerType,
		Options:         entity.StringArray(input.Options),
		CorrectAnswer:   input.CorrectAnswer,
		ScoringType:     input.ScoringType,
		SpeedBonus:      input.SpeedBonus,
		DurationSeconds: input.DurationSeconds,
		Position:        len(existing),
	}
	if err := s.questionRepo.Create(question); err != nil {
		return nil, err
	}
	return question, nil
}

// UpdateQuestion обновляет вопрос, сохраняя его позицию
func (s *QuizService) UpdateQuestion(questionID string, input QuestionInput) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	if input.DurationSeconds == 0 {
		input.DurationSeconds = question.DurationSeconds
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	question.Text = input.Text
	question.Images = entity.StringArray(input.Images)
	question.Audio = entity.StringArray(input.Audio)
	question.AnswerType = input.AnswerType
	question.Options = entity.StringArray(input.Options)
	question.CorrectAnswer = input.CorrectAnswer
	question.ScoringType = input.ScoringType
	question.SpeedBonus = input.SpeedBonus
	question.DurationSeconds = input.DurationSeconds

	if err := s.questionRepo.Update(question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос и пересчитывает позиции оставшихся
func (s *QuizService) DeleteQuestion(questionID string) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(questionID); err != nil {
		return err
	}

	remaining, err := s.questionRepo.ListByQuiz(question.QuizID)
	if err != nil {
		return err
	}
	orderedIDs := make([]string, 0, len(remaining))
	for _, q := range remaining {
		orderedIDs = append(orderedIDs, q.ID)
	}
	return s.questionRepo.UpdatePositions(question.QuizID, orderedIDs)
}

// ReorderQuestions выставляет новый порядок вопросов квиза
func (s *QuizService) ReorderQuestions(quizID string, orderedIDs []string) error {
	existing, err := s.questionRepo.ListByQuiz(quizID)
	if err != nil {
		return err
	}
	if len(orderedIDs) != len(existing) {
		return fmt.Errorf("%w: expected %d question ids, got %d", apperrors.ErrValidation, len(existing), len(orderedIDs))
	}
	known := make(map[string]bool, len(existing))
	for _, q := range existing {
		known[q.ID] = true
	}
	for _, id := range orderedIDs {
		if !known[id] {
			return fmt.Errorf("%w: question %s does not belong to quiz %s", apperrors.ErrValidation, id, quizID)
		}
	}
	return s.questionRepo.UpdatePositions(quizID, orderedIDs)
}

func validateQuizInput(input QuizInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: quiz name is required", apperrors.ErrValidation)
	}
	if input.DefaultQuestionDuration < minQuestionDuration {
		return fmt.Errorf("%w: default question duration must be at least %d seconds", apperrors.ErrValidation, minQuestionDuration)
	}
	if input.GapSeconds < 0 {
		return fmt.Errorf("%w: gap seconds must be non-negative", apperrors.ErrValidation)
	}
	return nil
}

func validateQuestionInput(input QuestionInput) error {
	switch input.AnswerType {
	case entity.AnswerTypeMultipleChoice:
		if len(input.Options) < 2 {
			return fmt.Errorf("%w: multiple choice question needs at least 2 options", apperrors.ErrValidation)
		}
		if input.CorrectAnswer != nil {
			found := false
			for _, opt := range input.Options {
				if opt == *input.CorrectAnswer {
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: correct answer must be one of the options", apperrors.ErrValidation)
			}
		}
	case entity.AnswerTypeNumeric:
		if input.CorrectAnswer != nil {
			if _, err := strconv.ParseFloat(strings.TrimSpace(*input.CorrectAnswer), 64); err != nil {
				return fmt.Errorf("%w: numeric question requires a numeric correct answer", apperrors.ErrValidation)
			}
		}
	case entity.AnswerTypeText:
		// Правильный ответ опционален: без него текстовый вопрос не засчитывается никому
	default:
		return fmt.Errorf("%w: unknown answer type %q", apperrors.ErrValidation, input.AnswerType)
	}

	switch input.ScoringType {
	case "", entity.ScoringTypeExact:
	case entity.ScoringTypeClosest:
		if input.AnswerType != entity.AnswerTypeNumeric {
			return fmt.Errorf("%w: closest scoring requires a numeric question", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown scoring type %q", apperrors.ErrValidation, input.ScoringType)
	}

	if input.DurationSeconds < minQuestionDuration {
		return fmt.Errorf("%w: question duration must be at least %d seconds", apperrors.ErrValidation, minQuestionDuration)
	}
	return nil
}
