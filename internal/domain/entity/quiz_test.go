package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsClosest(t *testing.T) {
	testCases := []struct {
		name     string
		question Question
		expected bool
	}{
		{"явный closest", Question{AnswerType: AnswerTypeNumeric, ScoringType: ScoringTypeClosest}, true},
		{"числовой exact", Question{AnswerType: AnswerTypeNumeric, ScoringType: ScoringTypeExact}, false},
		{"числовой без scoring_type (legacy)", Question{AnswerType: AnswerTypeNumeric}, true},
		{"текстовый exact", Question{AnswerType: AnswerTypeText, ScoringType: ScoringTypeExact}, false},
		{"выбор варианта", Question{AnswerType: AnswerTypeMultipleChoice, ScoringType: ScoringTypeExact}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.question.IsClosest())
		})
	}
}

func TestStringArray_ScanValue(t *testing.T) {
	var arr StringArray
	require.NoError(t, arr.Scan([]byte(`["a","b"]`)))
	assert.Equal(t, StringArray{"a", "b"}, arr)

	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr)

	value, err := StringArray{"x"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["x"]`, string(value.([]byte)))

	// Пустой массив сериализуется как [], а не null
	value, err = StringArray{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(value.([]byte)))
}

func TestNewPlayerID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPlayerID()
		assert.Len(t, id, 8)
		assert.NotContains(t, id, "-")
		seen[id] = true
	}
	assert.Greater(t, len(seen), 95, "Токены практически не повторяются")
}
