package runtime

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/yourusername/quizhost-api/internal/domain/entity"
)

const (
	// maxQuestionScore - потолок очков за один вопрос (1.0 базовых + 0.5 бонус)
	maxQuestionScore = 1.5
	exactBonus       = 0.5
)

// answersMatchExact сравнивает ответ с правильным по точному строковому равенству
func answersMatchExact(q *entity.Question, answer *string) bool {
	if q.CorrectAnswer == nil || answer == nil {
		return false
	}
	return *answer == *q.CorrectAnswer
}

// answersMatchFold - fallback-сравнение для текстовых вопросов,
// когда оракул недоступен: без учета регистра и краевых пробелов
func answersMatchFold(q *entity.Question, answer *string) bool {
	if q.CorrectAnswer == nil || answer == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*answer), strings.TrimSpace(*q.CorrectAnswer))
}

// finalizeClosestLocked начисляет очки за closest-вопрос по всем принятым
// ответам: ближайший к правильному числу получает 1.0, самый далекий 0.0,
// остальные линейно между ними; точное попадание дает бонус +0.5.
// Нечисловые ответы исключаются из рейтинга (0 очков). Вызывается под
// мьютексом контроллера ровно один раз на вопрос (см. currentFinalized).
func (c *Controller) finalizeClosestLocked(sessionID string, q *entity.Question) {
	if q.CorrectAnswer == nil {
		return
	}
	target, err := strconv.ParseFloat(strings.TrimSpace(*q.CorrectAnswer), 64)
	if err != nil {
		log.Printf("[RuntimeController] Пропуск финализации closest: нечисловой correct_answer вопроса %s", q.ID)
		return
	}

	rows, err := c.deps.Answers.ListForQuestion(sessionID, q.ID)
	if err != nil {
		log.Printf("[RuntimeController] Ошибка чтения ответов для финализации вопроса %s: %v", q.ID, err)
		return
	}

	type parsedAnswer struct {
		row  entity.SessionAnswer
		diff float64
	}

	var parsed []parsedAnswer
	minDiff, maxDiff := 0.0, 0.0
	for _, row := range rows {
		if row.Answer == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(*row.Answer), 64)
		if err != nil {
			continue
		}
		diff := value - target
		if diff < 0 {
			diff = -diff
		}
		if len(parsed) == 0 || diff < minDiff {
			minDiff = diff
		}
		if len(parsed) == 0 || diff > maxDiff {
			maxDiff = diff
		}
		parsed = append(parsed, parsedAnswer{row: row, diff: diff})
	}

	if len(parsed) == 0 {
		return
	}

	diffRange := maxDiff - minDiff

	for _, pa := range parsed {
		score := 1.0
		if diffRange > 0 {
			score = 1.0 - (pa.diff-minDiff)/diffRange
		}
		isExact := pa.diff == 0
		if isExact {
			score += exactBonus
		}
		if score < 0 {
			score = 0
		}
		if score > maxQuestionScore {
			score = maxQuestionScore
		}

		playerID := pa.row.PlayerID
		if score > 0 {
			c.addScoreLocked(sessionID, playerID, score)
		}

		isCorrect := isExact || score > 0
		if err := c.deps.Answers.UpdateIsCorrect(pa.row.ID, isCorrect); err != nil {
			log.Printf("[RuntimeController] Ошибка обновления is_correct ответа %s: %v", pa.row.ID, err)
		}

		exact := isExact
		c.answerResults[playerID] = &exact

		answerText := ""
		if pa.row.Answer != nil {
			answerText = *pa.row.Answer
		}
		c.closestResults = append(c.closestResults, ClosestResult{
			PlayerID: playerID,
			Answer:   answerText,
			Distance: pa.diff,
			IsExact:  isExact,
		})
	}

	// Рейтинг по возрастанию расстояния; при равенстве сохраняется порядок отправки
	sort.SliceStable(c.closestResults, func(i, j int) bool {
		return c.closestResults[i].Distance < c.closestResults[j].Distance
	})
}

// addScoreLocked добавляет дельту к счету игрока в памяти и в БД
func (c *Controller) addScoreLocked(sessionID, playerID string, delta float64) {
	player := c.players[sessionID][playerID]
	if player == nil {
		return
	}
	player.Score += delta
	if err := c.deps.Players.UpdateScore(player.ID, player.Score); err != nil {
		log.Printf("[RuntimeController] Ошибка сохранения счета игрока %s: %v", player.ID, err)
	}
}
