package runtime

import (
	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// TimelineEntry - один этап материализованного таймлайна сессии.
// Либо интро квиза (без таймера), либо вопрос с длительностью и паузой.
type TimelineEntry struct {
	Kind      string
	QuizIndex int
	// QuestionIndex равен -1 для интро квиза
	QuestionIndex int

	// Quiz и Questions заполняются для интро
	Quiz      *entity.Quiz
	Questions []entity.Question

	// Question заполняется для вопроса
	Question        *entity.Question
	DurationSeconds int
	GapSeconds      int
}

// IsQuestion проверяет, является ли этап вопросом
func (e *TimelineEntry) IsQuestion() bool {
	return e.Kind == entity.EntryKindQuestion
}

// BuildTimeline материализует плейлист сессии в линейную последовательность
// этапов: для каждого квиза сначала интро, затем по одному этапу на вопрос.
// Плейлист должен быть отсортирован по position с предзагруженными
// вопросами (см. SessionRepository.GetPlaylist). Квиз без вопросов
// дает только интро.
func BuildTimeline(playlist []entity.SessionQuiz) []TimelineEntry {
	var timeline []TimelineEntry

	for quizIndex, item := range playlist {
		quiz := item.Quiz
		if quiz == nil {
			continue
		}

		questions := quiz.Questions

		timeline = append(timeline, TimelineEntry{
			Kind:          entity.EntryKindQuizIntro,
			QuizIndex:     quizIndex,
			QuestionIndex: -1,
			Quiz:          quiz,
			Questions:     questions,
		})

		for questionIndex := range questions {
			question := &questions[questionIndex]

			duration := question.DurationSeconds
			if duration <= 0 {
				duration = quiz.DefaultQuestionDuration
			}

			timeline = append(timeline, TimelineEntry{
				Kind:            entity.EntryKindQuestion,
				QuizIndex:       quizIndex,
				QuestionIndex:   questionIndex,
				Quiz:            quiz,
				Question:        question,
				DurationSeconds: duration,
				GapSeconds:      quiz.GapSeconds,
			})
		}
	}

	return timeline
}

// CountQuestions возвращает число этапов-вопросов в таймлайне.
// Сессия без единого вопроса не может быть запущена.
func CountQuestions(timeline []TimelineEntry) int {
	count := 0
	for i := range timeline {
		if timeline[i].IsQuestion() {
			count++
		}
	}
	return count
}
