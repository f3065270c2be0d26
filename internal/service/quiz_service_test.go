package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// ============================================================================
// Моки репозиториев
// ============================================================================

type mockQuizRepo struct {
	mock.Mock
}

func (m *mockQuizRepo) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *mockQuizRepo) GetByID(id string) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *mockQuizRepo) GetWithQuestions(id string) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *mockQuizRepo) List() ([]entity.Quiz, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *mockQuizRepo) Update(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *mockQuizRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type mockQuestionRepo struct {
	mock.Mock
}

func (m *mockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *mockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *mockQuestionRepo) GetByID(id string) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *mockQuestionRepo) ListByQuiz(quizID string) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *mockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *mockQuestionRepo) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *mockQuestionRepo) UpdatePositions(quizID string, orderedIDs []string) error {
	args := m.Called(quizID, orderedIDs)
	return args.Error(0)
}

func strPointer(s string) *string { return &s }

// ============================================================================
// Квизы
// ============================================================================

func TestCreateQuiz_Success(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	questionRepo := new(mockQuestionRepo)
	svc := NewQuizService(quizRepo, questionRepo)

	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	quiz, err := svc.CreateQuiz(QuizInput{
		Name:                    "  Pub Quiz  ",
		DefaultQuestionDuration: 30,
		GapSeconds:              3,
	})

	require.NoError(t, err)
	assert.Equal(t, "Pub Quiz", quiz.Name, "Имя обрезается по краям")
	quizRepo.AssertExpectations(t)
}

func TestCreateQuiz_ValidationErrors(t *testing.T) {
	svc := NewQuizService(new(mockQuizRepo), new(mockQuestionRepo))

	testCases := []struct {
		name  string
		input QuizInput
	}{
		{"пустое имя", QuizInput{Name: "   ", DefaultQuestionDuration: 30}},
		{"слишком короткая длительность", QuizInput{Name: "q", DefaultQuestionDuration: 3}},
		{"отрицательная пауза", QuizInput{Name: "q", DefaultQuestionDuration: 30, GapSeconds: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateQuiz(tc.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestUpdateQuiz_NotFound(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	svc := NewQuizService(quizRepo, new(mockQuestionRepo))

	quizRepo.On("GetByID", "missing").Return(nil, apperrors.ErrNotFound)

	_, err := svc.UpdateQuiz("missing", QuizInput{Name: "q", DefaultQuestionDuration: 30})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Вопросы
// ============================================================================

func TestAddQuestion_AppendsToEnd(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	questionRepo := new(mockQuestionRepo)
	svc := NewQuizService(quizRepo, questionRepo)

	quizRepo.On("GetByID", "quiz-1").Return(&entity.Quiz{ID: "quiz-1", DefaultQuestionDuration: 30}, nil)
	questionRepo.On("ListByQuiz", "quiz-1").Return([]entity.Question{{ID: "q1"}, {ID: "q2"}}, nil)
	questionRepo.On("Create", mock.AnythingOfType("*entity.Question")).Return(nil)

	question, err := svc.AddQuestion("quiz-1", QuestionInput{
		Text:       strPointer("2+2?"),
		AnswerType: entity.AnswerTypeMultipleChoice,
		Options:    []string{"3", "4"},
		// DurationSeconds не задана
		CorrectAnswer: strPointer("4"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, question.Position, "Новый вопрос встает в конец")
	assert.Equal(t, 30, question.DurationSeconds, "Длительность наследуется от квиза")
	questionRepo.AssertExpectations(t)
}

func TestAddQuestion_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input QuestionInput
	}{
		{"один вариант выбора", QuestionInput{
			AnswerType: entity.AnswerTypeMultipleChoice,
			Options:    []string{"A"},
		}},
		{"правильный ответ вне вариантов", QuestionInput{
			AnswerType:    entity.AnswerTypeMultipleChoice,
			Options:       []string{"A", "B"},
			CorrectAnswer: strPointer("C"),
		}},
		{"нечисловой ответ числового вопроса", QuestionInput{
			AnswerType:    entity.AnswerTypeNumeric,
			CorrectAnswer: strPointer("not a number"),
		}},
		{"closest для текстового вопроса", QuestionInput{
			AnswerType:    entity.AnswerTypeText,
			CorrectAnswer: strPointer("x"),
			ScoringType:   entity.ScoringTypeClosest,
		}},
		{"неизвестный тип ответа", QuestionInput{
			AnswerType: "essay",
		}},
		{"слишком короткая длительность", QuestionInput{
			AnswerType:      entity.AnswerTypeText,
			DurationSeconds: 2,
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			quizRepo := new(mockQuizRepo)
			svc := NewQuizService(quizRepo, new(mockQuestionRepo))
			quizRepo.On("GetByID", "quiz-1").Return(&entity.Quiz{ID: "quiz-1", DefaultQuestionDuration: 30}, nil)

			_, err := svc.AddQuestion("quiz-1", tc.input)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestDeleteQuestion_ResequencesPositions(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	questionRepo := new(mockQuestionRepo)
	svc := NewQuizService(quizRepo, questionRepo)

	questionRepo.On("GetByID", "q2").Return(&entity.Question{ID: "q2", QuizID: "quiz-1"}, nil)
	questionRepo.On("Delete", "q2").Return(nil)
	questionRepo.On("ListByQuiz", "quiz-1").Return([]entity.Question{{ID: "q1"}, {ID: "q3"}}, nil)
	questionRepo.On("UpdatePositions", "quiz-1", []string{"q1", "q3"}).Return(nil)

	require.NoError(t, svc.DeleteQuestion("q2"))
	questionRepo.AssertExpectations(t)
}

func TestReorderQuestions_ValidatesMembership(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	questionRepo := new(mockQuestionRepo)
	svc := NewQuizService(quizRepo, questionRepo)

	questionRepo.On("ListByQuiz", "quiz-1").Return([]entity.Question{{ID: "q1"}, {ID: "q2"}}, nil)

	err := svc.ReorderQuestions("quiz-1", []string{"q1", "alien"})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Чужой id отклоняется")

	err = svc.ReorderQuestions("quiz-1", []string{"q1"})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Неполный список отклоняется")
}

func TestReorderQuestions_Success(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	questionRepo := new(mockQuestionRepo)
	svc := NewQuizService(quizRepo, questionRepo)

	questionRepo.On("ListByQuiz", "quiz-1").Return([]entity.Question{{ID: "q1"}, {ID: "q2"}}, nil)
	questionRepo.On("UpdatePositions", "quiz-1", []string{"q2", "q1"}).Return(nil)

	require.NoError(t, svc.ReorderQuestions("quiz-1", []string{"q2", "q1"}))
	questionRepo.AssertExpectations(t)
}
