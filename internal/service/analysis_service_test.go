package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wordmastery/internal/mastery"
	"wordmastery/internal/models"
)

func playWords(t *testing.T, svc *SessionService, studentID string, results map[string][]bool) {
	t.Helper()
	ctx := context.Background()
	s, err := svc.StartSession(ctx, studentID, "translation-drill", models.ModeNormal, "")
	require.NoError(t, err)

	var n int64
	for _, vocab := range []string{"101", "102", "103", "201", "999"} {
		for _, correct := range results[vocab] {
			n++
			_, err := svc.RecordAttempt(ctx, s.ID, models.AttemptEvent{VocabularyID: vocab, WasCorrect: correct, Sequence: seq(n)})
			require.NoError(t, err)
		}
	}
}

func repeat(correct, incorrect int) []bool {
	var out []bool
	for i := 0; i < incorrect; i++ {
		out = append(out, false)
	}
	for i := 0; i < correct; i++ {
		out = append(out, true)
	}
	return out
}

func TestWeakWordsAnalysis(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	seedCatalog(t, e)
	sessions := e.sessionService(SessionOptions{})
	analysis := NewAnalysisService(e.store, e.vocab, mastery.NewGenerator(5), e.logger, time.Minute)
	sessions.AddListener(analysis)

	playWords(t, sessions, "student-1", map[string][]bool{
		"101": repeat(3, 7),  // 30%
		"102": repeat(18, 2), // 90%, 18 correct in a row reaches level 5
		"103": repeat(4, 6),  // 40%
	})

	got, err := analysis.WeakWordsAnalysis(ctx, "student-1")
	require.NoError(t, err)

	require.Len(t, got.WeakWords, 2)
	assert.Equal(t, "hola", got.WeakWords[0].Word)
	assert.Equal(t, 30, got.WeakWords[0].Accuracy)
	assert.Equal(t, []models.GameType{"memory-game", "word-scramble", "conversation-practice"}, got.WeakWords[0].RecommendedGames)
	assert.Equal(t, "adiós", got.WeakWords[1].Word)

	require.Len(t, got.StrongWords, 1)
	assert.Equal(t, "gracias", got.StrongWords[0].Word)
	assert.Equal(t, 5, got.StrongWords[0].MasteryLevel)

	assert.Equal(t, models.AnalysisSummary{TotalWords: 3, WeakWordsCount: 2, StrongWordsCount: 1, AverageAccuracy: 53}, got.Summary)
	require.NotEmpty(t, got.Recommendations)
	assert.Equal(t, models.RecommendationPractice, got.Recommendations[0].Type)

	empty, err := analysis.WeakWordsAnalysis(ctx, "student-2")
	require.NoError(t, err)
	assert.Empty(t, empty.WeakWords)
	assert.Equal(t, 0, empty.Summary.TotalWords)

	_, err = analysis.WeakWordsAnalysis(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAnalysisCacheInvalidatedByAttempts(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	seedCatalog(t, e)
	sessions := e.sessionService(SessionOptions{})
	analysis := NewAnalysisService(e.store, e.vocab, mastery.NewGenerator(5), e.logger, time.Hour)
	sessions.AddListener(analysis)

	playWords(t, sessions, "student-1", map[string][]bool{"201": repeat(1, 4)})

	first, err := analysis.WeakWordsAnalysis(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, first.WeakWords, 1)

	// a direct store write bypasses invalidation, so the cached result is served
	s, err := sessions.StartSession(ctx, "student-1", "flashcards", models.ModeNormal, "")
	require.NoError(t, err)
	_, _, err = e.store.ApplyAttempt(ctx, models.WordAttempt{
		IdempotencyKey: "direct", SessionID: s.ID, StudentID: "student-1", VocabularyID: "101",
		AttemptedAt: time.Now(), ReceivedAt: time.Now(),
	}, false)
	require.NoError(t, err)
	cached, err := analysis.WeakWordsAnalysis(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Summary.TotalWords)

	// an ingested attempt invalidates
	_, err = sessions.RecordAttempt(ctx, s.ID, models.AttemptEvent{VocabularyID: "102", WasCorrect: true, Sequence: seq(1)})
	require.NoError(t, err)
	fresh, err := analysis.WeakWordsAnalysis(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, 3, fresh.Summary.TotalWords)
}

func TestAnalysisCacheExpiry(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	analysis := NewAnalysisService(e.store, e.vocab, mastery.NewGenerator(5), e.logger, time.Minute)
	clock := &fixedClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	analysis.now = clock.now

	_, err := analysis.WeakWordsAnalysis(ctx, "student-1")
	require.NoError(t, err)
	_, err = analysis.WeakWordsAnalysis(ctx, "student-2")
	require.NoError(t, err)
	assert.Zero(t, analysis.PurgeExpired())

	clock.t = clock.t.Add(2 * time.Minute)
	assert.Equal(t, 2, analysis.PurgeExpired())
}

func TestAttemptAppliedBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	analysis := NewAnalysisService(e.store, e.vocab, mastery.NewGenerator(5), e.logger, time.Hour)
	analysis.AttemptApplied("student-1")

	_, err := analysis.WeakWordsAnalysis(ctx, "student-1")
	require.NoError(t, err)
	analysis.mu.Lock()
	_, cached := analysis.cache["student-1"]
	analysis.mu.Unlock()
	assert.True(t, cached)

	analysis.AttemptApplied("student-1")
	analysis.mu.Lock()
	_, cached = analysis.cache["student-1"]
	gen := analysis.generations["student-1"]
	analysis.mu.Unlock()
	assert.False(t, cached)
	assert.Equal(t, uint64(2), gen)
}

func TestAnalysisConcurrentReadsAreConsistent(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	seedCatalog(t, e)
	sessions := e.sessionService(SessionOptions{})
	analysis := NewAnalysisService(e.store, e.vocab, mastery.NewGenerator(5), e.logger, time.Minute)
	sessions.AddListener(analysis)

	playWords(t, sessions, "student-1", map[string][]bool{
		"101": repeat(3, 7),
		"201": repeat(2, 8),
		"999": repeat(1, 2),
	})

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, err := analysis.WeakWordsAnalysis(ctx, "student-1")
			if err != nil {
				results[i] = err.Error()
				return
			}
			b, _ := json.Marshal(a)
			results[i] = string(b)
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	seedCatalog(t, e)
	sessions := e.sessionService(SessionOptions{})
	analysis := NewAnalysisService(e.store, e.vocab, mastery.NewGenerator(5), e.logger, time.Minute)

	playWords(t, sessions, "student-1", map[string][]bool{
		"101": repeat(3, 7),
		"102": repeat(18, 2),
		"999": repeat(1, 1),
	})

	summaries, err := analysis.Categories(ctx, "student-1", "")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "uncategorized", summaries[0].Category)
	assert.Equal(t, 50.0, summaries[0].AverageAccuracy)
	assert.Equal(t, "greetings", summaries[1].Category)
	assert.Equal(t, 60.0, summaries[1].AverageAccuracy)
	assert.Equal(t, 1, summaries[1].MasteredWords)
	assert.Equal(t, models.PriorityMedium, summaries[1].Priority)

	_, err = analysis.Categories(ctx, "student-1", "word")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
