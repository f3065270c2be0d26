package service

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// buildXLSX собирает в памяти файл импорта: первая строка - заголовок,
// дальше строки вопросов
func buildXLSX(t *testing.T, rows [][]string) io.Reader {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	header := []interface{}{"text", "answer_type", "options", "correct_answer", "scoring_type", "duration_seconds", "images", "audio"}
	require.NoError(t, file.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cellRef, &values))
	}

	var buf bytes.Buffer
	require.NoError(t, file.Write(&buf))
	return &buf
}

func TestImportQuizXLSX_ParsesQuestions(t *testing.T) {
	quizRepo := new(mockQuizRepo)
	questionRepo := new(mockQuestionRepo)
	svc := NewImportService(quizRepo, questionRepo)

	var createdQuiz *entity.Quiz
	quizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Run(func(args mock.Arguments) {
		createdQuiz = args.Get(0).(*entity.Quiz)
		createdQuiz.ID = "quiz-1"
	}).Return(nil)

	var batch []entity.Question
	questionRepo.On("CreateBatch", mock.AnythingOfType("[]entity.Question")).Run(func(args mock.Arguments) {
		batch = args.Get(0).([]entity.Question)
	}).Return(nil)

	quizRepo.On("GetWithQuestions", "quiz-1").Return(&entity.Quiz{ID: "quiz-1", Name: "Imported"}, nil)

	reader := buildXLSX(t, [][]string{
		{"Столица Франции?", "multiple_choice", "Париж|Лион|Марсель", "Париж", "exact", "20"},
		{"Сколько будет 2+2?", "numeric", "", "4", "closest", ""},
		{}, // пустая строка пропускается
		{"Кто тянет сани?", "", "", "Рудольф", "", "", "deer.jpg|sleigh.png", "bells.mp3"},
	})

	quiz, err := svc.ImportQuizXLSX("Imported", reader, QuizInput{GapSeconds: 3})

	require.NoError(t, err)
	assert.Equal(t, "Imported", quiz.Name)

	require.Len(t, batch, 3, "Пустые строки не дают вопросов")
	assert.Equal(t, "quiz-1", batch[0].QuizID)
	assert.Equal(t, []int{0, 1, 2}, []int{batch[0].Position, batch[1].Position, batch[2].Position})

	assert.Equal(t, entity.AnswerTypeMultipleChoice, batch[0].AnswerType)
	assert.Equal(t, entity.StringArray{"Париж", "Лион", "Марсель"}, batch[0].Options)
	assert.Equal(t, 20, batch[0].DurationSeconds)

	assert.Equal(t, entity.ScoringTypeClosest, batch[1].ScoringType)
	assert.Equal(t, 30, batch[1].DurationSeconds, "Пустая длительность берет default (30)")

	assert.Equal(t, entity.AnswerTypeText, batch[2].AnswerType, "Пустой answer_type считается text")
	assert.Equal(t, entity.StringArray{"deer.jpg", "sleigh.png"}, batch[2].Images)
	assert.Equal(t, entity.StringArray{"bells.mp3"}, batch[2].Audio)
}

func TestImportQuizXLSX_RowErrorsIncludeRowNumber(t *testing.T) {
	svc := NewImportService(new(mockQuizRepo), new(mockQuestionRepo))

	reader := buildXLSX(t, [][]string{
		{"Нормальный вопрос", "text", "", "ответ"},
		{"Сломанный вопрос", "multiple_choice", "единственный вариант"},
	})

	_, err := svc.ImportQuizXLSX("Bad", reader, QuizInput{})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "row 3", "Ошибка указывает на строку листа (с учетом заголовка)")
}

func TestImportQuizXLSX_EmptySheet(t *testing.T) {
	svc := NewImportService(new(mockQuizRepo), new(mockQuestionRepo))

	reader := buildXLSX(t, nil)
	_, err := svc.ImportQuizXLSX("Empty", reader, QuizInput{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestImportQuizXLSX_NotAnXLSX(t *testing.T) {
	svc := NewImportService(new(mockQuizRepo), new(mockQuestionRepo))

	_, err := svc.ImportQuizXLSX("Garbage", bytes.NewBufferString("this is not a spreadsheet"), QuizInput{})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
