package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

// ============================================================================
// Материализация таймлайна
// ============================================================================

func TestBuildTimeline_InterleavesIntrosAndQuestions(t *testing.T) {
	quizA := makeQuiz(3, mcQuestion("A", "A", "B"), textQuestion("foo"))
	quizB := makeQuiz(5, closestQuestion("42"))
	playlist := []entity.SessionQuiz{
		{QuizID: quizA.ID, Position: 0, Quiz: quizA},
		{QuizID: quizB.ID, Position: 1, Quiz: quizB},
	}

	timeline := BuildTimeline(playlist)

	require.Len(t, timeline, 5, "Интро + 2 вопроса + интро + 1 вопрос")
	assert.Equal(t, entity.EntryKindQuizIntro, timeline[0].Kind)
	assert.Equal(t, 0, timeline[0].QuizIndex)
	assert.Equal(t, -1, timeline[0].QuestionIndex, "Интро не имеет индекса вопроса")
	assert.Len(t, timeline[0].Questions, 2)

	assert.Equal(t, entity.EntryKindQuestion, timeline[1].Kind)
	assert.Equal(t, 0, timeline[1].QuestionIndex)
	assert.Equal(t, 3, timeline[1].GapSeconds, "Пауза берется из настроек квиза")

	assert.Equal(t, entity.EntryKindQuizIntro, timeline[3].Kind)
	assert.Equal(t, 1, timeline[3].QuizIndex)
	assert.Equal(t, entity.EntryKindQuestion, timeline[4].Kind)
	assert.Equal(t, 1, timeline[4].QuizIndex)
	assert.Equal(t, 0, timeline[4].QuestionIndex, "Нумерация вопросов внутри квиза начинается заново")

	assert.Equal(t, 3, CountQuestions(timeline))
}

func TestBuildTimeline_DurationFallsBackToQuizDefault(t *testing.T) {
	quiz := makeQuiz(0, entity.Question{
		AnswerType:    entity.AnswerTypeMultipleChoice,
		Options:       entity.StringArray{"A", "B"},
		CorrectAnswer: strPtr("A"),
		ScoringType:   entity.ScoringTypeExact,
		// DurationSeconds не задана
	})
	quiz.DefaultQuestionDuration = 45
	playlist := []entity.SessionQuiz{{QuizID: quiz.ID, Quiz: quiz}}

	timeline := BuildTimeline(playlist)

	require.Len(t, timeline, 2)
	assert.Equal(t, 45, timeline[1].DurationSeconds,
		"Вопрос без длительности наследует default_question_duration квиза")
}

func TestBuildTimeline_QuizWithoutQuestionsGivesOnlyIntro(t *testing.T) {
	quiz := makeQuiz(0)
	playlist := []entity.SessionQuiz{{QuizID: quiz.ID, Quiz: quiz}}

	timeline := BuildTimeline(playlist)

	require.Len(t, timeline, 1)
	assert.Equal(t, entity.EntryKindQuizIntro, timeline[0].Kind)
	assert.Equal(t, 0, CountQuestions(timeline))
}

func TestBuildTimeline_EmptyPlaylist(t *testing.T) {
	assert.Empty(t, BuildTimeline(nil))
	assert.Equal(t, 0, CountQuestions(nil))
}
