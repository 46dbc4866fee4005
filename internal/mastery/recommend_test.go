package mastery

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmastery/internal/models"
)

func TestSuggestGames(t *testing.T) {
	tests := []struct {
		name     string
		category string
		accuracy float64
		want     []models.GameType
	}{
		{"recall band with greeting affinity", "greetings", 30, []models.GameType{"memory-game", "word-scramble", "conversation-practice"}},
		{"recall band without affinity", "animals", 10, []models.GameType{"memory-game", "word-scramble"}},
		{"construction band", "animals", 40, []models.GameType{"word-scramble", "spelling-practice"}},
		{"construction band upper edge", "animals", 59.9, []models.GameType{"word-scramble", "spelling-practice"}},
		{"fluency band", "animals", 60, []models.GameType{"translation-drill", "sentence-builder"}},
		{"fluency band with numbers affinity", "numbers", 65, []models.GameType{"translation-drill", "sentence-builder", "listening-challenge"}},
		{"affinity already suggested is not repeated", "phrases", 65, []models.GameType{"translation-drill", "sentence-builder"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestGames(tt.category, tt.accuracy)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 3)
		})
	}
}

func TestRankWeak(t *testing.T) {
	stats := Evaluate([]models.VocabularyMasteryRecord{
		record("b", 3, 7, 0),  // 30%, 10 attempts
		record("a", 6, 14, 0), // 30%, 20 attempts
		record("c", 3, 7, 0),  // 30%, 10 attempts, ties with b on id
		record("d", 1, 9, 0),  // 10%
		record("e", 9, 1, 3),  // not weak
		record("f", 0, 2, 0),  // too few attempts
	}, testCatalog)

	weak := RankWeak(stats)
	ids := make([]string, len(weak))
	for i, w := range weak {
		ids[i] = w.Record.VocabularyID
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids)
}

func TestRecommendations(t *testing.T) {
	gen := NewGenerator(5)

	t.Run("weak words produce practice and category focus", func(t *testing.T) {
		stats := Evaluate([]models.VocabularyMasteryRecord{
			record("101", 3, 7, 0),
			record("102", 18, 2, 5),
			record("103", 4, 6, 0),
			record("301", 9, 1, 4),
		}, testCatalog)
		analysis := gen.Analyze(stats)

		require.Len(t, analysis.Recommendations, 2)
		practice := analysis.Recommendations[0]
		assert.Equal(t, models.RecommendationPractice, practice.Type)
		assert.Equal(t, models.PriorityHigh, practice.Priority)
		assert.Equal(t, "10-15 minutes", practice.EstimatedTime)
		assert.Equal(t, []string{"hola", "adiós"}, practice.TargetWords)

		focus := analysis.Recommendations[1]
		assert.Equal(t, models.RecommendationCategoryFocus, focus.Type)
		assert.Equal(t, "greetings", focus.Category)
		assert.Equal(t, models.PriorityHigh, focus.Priority)
		assert.Equal(t, []string{"hola", "adiós"}, focus.TargetWords)
	})

	t.Run("practice names at most the word limit", func(t *testing.T) {
		var records []models.VocabularyMasteryRecord
		for _, id := range []string{"w1", "w2", "w3", "w4", "w5", "w6", "w7"} {
			records = append(records, record(id, 1, 4, 0))
		}
		analysis := gen.Analyze(Evaluate(records, nil))

		require.NotEmpty(t, analysis.Recommendations)
		assert.Equal(t, []string{"w1", "w2", "w3", "w4", "w5"}, analysis.Recommendations[0].TargetWords)
		assert.Len(t, analysis.WeakWords, 7)
	})

	t.Run("low priority categories get no focus", func(t *testing.T) {
		stats := Evaluate([]models.VocabularyMasteryRecord{
			record("201", 6, 4, 1),  // 60% weak
			record("202", 20, 0, 5), // 100%
		}, testCatalog)
		analysis := gen.Analyze(stats)

		require.Len(t, analysis.Recommendations, 1)
		assert.Equal(t, models.RecommendationPractice, analysis.Recommendations[0].Type)
	})

	t.Run("no weak words but strong words produce a challenge", func(t *testing.T) {
		stats := Evaluate([]models.VocabularyMasteryRecord{
			record("102", 18, 2, 5),
			record("301", 2, 0, 0),
		}, testCatalog)
		analysis := gen.Analyze(stats)

		require.Len(t, analysis.Recommendations, 1)
		rec := analysis.Recommendations[0]
		assert.Equal(t, models.RecommendationChallenge, rec.Type)
		assert.Equal(t, models.PriorityLow, rec.Priority)
		assert.Equal(t, []string{"gracias"}, rec.TargetWords)
	})

	t.Run("challenge names only the words it targets", func(t *testing.T) {
		stats := Evaluate([]models.VocabularyMasteryRecord{
			record("301", 18, 2, 5),
			record("102", 18, 2, 5),
			record("202", 19, 1, 5),
		}, testCatalog)
		analysis := NewGenerator(2).Analyze(stats)

		require.Len(t, analysis.StrongWords, 3)
		require.Len(t, analysis.Recommendations, 1)
		rec := analysis.Recommendations[0]
		assert.Equal(t, []string{"gato", "gracias"}, rec.TargetWords)
		assert.Equal(t, "Keep your 2 strongest words sharp with a timed game: gato, gracias.", rec.Description)
	})

	t.Run("nothing to say", func(t *testing.T) {
		analysis := gen.Analyze(nil)
		assert.NotNil(t, analysis.Recommendations)
		assert.Empty(t, analysis.Recommendations)
		assert.NotNil(t, analysis.WeakWords)
		assert.NotNil(t, analysis.StrongWords)
		assert.Equal(t, models.AnalysisSummary{}, analysis.Summary)
	})
}

func TestAnalyzeMatchesResponseContract(t *testing.T) {
	practiced := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []models.VocabularyMasteryRecord{
		record("101", 3, 7, 0),
		record("102", 18, 2, 5),
		record("103", 4, 6, 0),
	}
	for i := range records {
		records[i].LastPracticedAt = practiced
	}

	analysis := NewGenerator(5).Analyze(Evaluate(records, testCatalog))

	require.Len(t, analysis.WeakWords, 2)
	hola := analysis.WeakWords[0]
	assert.Equal(t, "101", hola.ID)
	assert.Equal(t, "hola", hola.Word)
	assert.Equal(t, "hello", hola.Translation)
	assert.Equal(t, "greetings", hola.Category)
	assert.Equal(t, 30, hola.Accuracy)
	assert.Equal(t, 10, hola.TotalAttempts)
	assert.Equal(t, 3, hola.CorrectAttempts)
	assert.Equal(t, []models.GameType{"memory-game", "word-scramble", "conversation-practice"}, hola.RecommendedGames)

	require.Len(t, analysis.StrongWords, 1)
	assert.Equal(t, models.StrongWord{ID: "102", Word: "gracias", Category: "greetings", Accuracy: 90, TotalAttempts: 20, MasteryLevel: 5}, analysis.StrongWords[0])

	assert.Equal(t, models.AnalysisSummary{TotalWords: 3, WeakWordsCount: 2, StrongWordsCount: 1, AverageAccuracy: 53}, analysis.Summary)

	body, err := json.Marshal(analysis)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	for _, key := range []string{"weakWords", "strongWords", "recommendations", "summary"} {
		assert.Contains(t, decoded, key)
	}
	weak := decoded["weakWords"].([]interface{})[0].(map[string]interface{})
	for _, key := range []string{"id", "word", "translation", "category", "accuracy", "totalAttempts", "correctAttempts", "lastPracticed", "recommendedGames"} {
		assert.Contains(t, weak, key)
	}
	assert.Equal(t, "2024-05-01T12:00:00Z", weak["lastPracticed"])
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	records := []models.VocabularyMasteryRecord{
		record("101", 3, 7, 0),
		record("102", 18, 2, 5),
		record("103", 4, 6, 0),
		record("201", 1, 5, 0),
		record("202", 2, 4, 0),
		record("301", 5, 5, 1),
		record("999", 0, 4, 0),
	}
	reversed := make([]models.VocabularyMasteryRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}

	gen := NewGenerator(5)
	first, err := json.Marshal(gen.Analyze(Evaluate(records, testCatalog)))
	require.NoError(t, err)
	second, err := json.Marshal(gen.Analyze(Evaluate(records, testCatalog)))
	require.NoError(t, err)
	shuffled, err := json.Marshal(gen.Analyze(Evaluate(reversed, testCatalog)))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, string(first), string(shuffled))
}

func TestWeakAndStrongListsAreDisjoint(t *testing.T) {
	var records []models.VocabularyMasteryRecord
	for c := 0; c <= 6; c++ {
		for i := 0; i <= 6; i++ {
			for _, level := range []int{0, 4, 5} {
				records = append(records, record(
					string(rune('a'+c))+string(rune('a'+i))+string(rune('0'+level)), c*3, i, level))
			}
		}
	}

	analysis := NewGenerator(5).Analyze(Evaluate(records, nil))
	weak := map[string]bool{}
	for _, w := range analysis.WeakWords {
		weak[w.ID] = true
		assert.GreaterOrEqual(t, w.TotalAttempts, MinAttempts)
	}
	for _, s := range analysis.StrongWords {
		assert.False(t, weak[s.ID], "%s is both weak and strong", s.ID)
		assert.GreaterOrEqual(t, s.TotalAttempts, MinAttempts)
	}
}
