package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
	"github.com/yourusername/quizhost-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhost-api/internal/pkg/errors"
)

// Колонки листа импорта (первая строка - заголовок):
// text | answer_type | options | correct_answer | scoring_type | duration_seconds | images | audio
// Списки (options, images, audio) разделяются вертикальной чертой.
const (
	colText = iota
	colAnswerType
	colOptions
	colCorrectAnswer
	colScoringType
	colDuration
	colImages
	colAudio
)

// ImportService загружает квизы из XLSX-файлов
type ImportService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
}

// NewImportService создает новый сервис импорта
func NewImportService(quizRepo repository.QuizRepository, questionRepo repository.QuestionRepository) *ImportService {
	return &ImportService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
	}
}

// ImportQuizXLSX читает XLSX и создает квиз с вопросами.
// Имя квиза берется из параметра, вопросы - с первого листа файла.
func (s *ImportService) ImportQuizXLSX(name string, reader io.Reader, input QuizInput) (*entity.Quiz, error) {
	file, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open xlsx file: %v", apperrors.ErrValidation, err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: xlsx file has no sheets", apperrors.ErrValidation)
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read sheet %q: %v", apperrors.ErrValidation, sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: sheet %q has no question rows", apperrors.ErrValidation, sheets[0])
	}

	input.Name = name
	if input.DefaultQuestionDuration == 0 {
		input.DefaultQuestionDuration = 30
	}
	if err := validateQuizInput(input); err != nil {
		return nil, err
	}

	questions := make([]entity.Question, 0, len(rows)-1)
	for rowIndex, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		question, err := parseQuestionRow(row, input.DefaultQuestionDuration)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", apperrors.ErrValidation, rowIndex+2, err)
		}
		question.Position = len(questions)
		questions = append(questions, *question)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: no questions found in file", apperrors.ErrValidation)
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

	for i := range questions {
		questions[i].QuizID = quiz.ID
	}
	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}

	return s.quizRepo.GetWithQuestions(quiz.ID)
}

func parseQuestionRow(row []string, defaultDuration int) (*entity.Question, error) {
	answerType := strings.TrimSpace(cell(row, colAnswerType))
	if answerType == "" {
		answerType = entity.AnswerTypeText
	}

	duration := defaultDuration
	if raw := strings.TrimSpace(cell(row, colDuration)); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration_seconds %q", raw)
		}
		duration = parsed
	}

	input := QuestionInput{
		AnswerType:      answerType,
		Options:         splitList(cell(row, colOptions)),
		ScoringType:     strings.TrimSpace(cell(row, colScoringType)),
		DurationSeconds: duration,
	}
	if text := strings.TrimSpace(cell(row, colText)); text != "" {
		input.Text = &text
	}
	if correct := strings.TrimSpace(cell(row, colCorrectAnswer)); correct != "" {
		input.CorrectAnswer = &correct
	}
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	return &entity.Question{
		Text:            input.Text,
		Images:          entity.StringArray(splitList(cell(row, colImages))),
		Audio:           entity.StringArray(splitList(cell(row, colAudio))),
		AnswerType:      input.AnswerType,
		Options:         entity.StringArray(input.Options),
		CorrectAnswer:   input.CorrectAnswer,
		ScoringType:     input.ScoringType,
		DurationSeconds: input.DurationSeconds,
	}, nil
}

func cell(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

func splitList(raw string) []string {
	var result []string
	for _, part := range strings.Split(raw, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func isEmptyRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
