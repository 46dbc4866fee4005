package mastery

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"wordmastery/internal/models"
)

// DefaultWordLimit is the number of words named by a recommendation
const DefaultWordLimit = 5

const maxSuggestedGames = 3

// Generator builds the weak-words analysis and its recommendations.
// Output depends only on its input, so identical state yields identical JSON.
type Generator struct {
	wordLimit int
}

// NewGenerator creates a generator naming at most wordLimit words per recommendation
func NewGenerator(wordLimit int) *Generator {
	if wordLimit <= 0 {
		wordLimit = DefaultWordLimit
	}
	return &Generator{wordLimit: wordLimit}
}

// RankWeak returns the weak words, weakest first. Ties go to the word with
// more attempts, then to the lower id.
func RankWeak(stats []WordStat) []WordStat {
	var weak []WordStat
	for _, s := range stats {
		if s.Classification == Weak {
			weak = append(weak, s)
		}
	}
	sort.SliceStable(weak, func(i, j int) bool {
		a, b := weak[i], weak[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		if a.Record.TotalAttempts() != b.Record.TotalAttempts() {
			return a.Record.TotalAttempts() > b.Record.TotalAttempts()
		}
		return a.Record.VocabularyID < b.Record.VocabularyID
	})
	return weak
}

// RankStrong returns the strong words, most accurate first
func RankStrong(stats []WordStat) []WordStat {
	var strong []WordStat
	for _, s := range stats {
		if s.Classification == Strong {
			strong = append(strong, s)
		}
	}
	sort.SliceStable(strong, func(i, j int) bool {
		a, b := strong[i], strong[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
		return a.Record.VocabularyID < b.Record.VocabularyID
	})
	return strong
}

// bandTag maps an accuracy to the mechanic that helps most at that level
func bandTag(accuracy float64) models.Tag {
	switch {
	case accuracy < 40:
		return models.TagRecall
	case accuracy < 60:
		return models.TagConstruction
	default:
		return models.TagFluency
	}
}

// SuggestGames lists up to three games for a weak word: two matching its
// accuracy band, then one suited to its category.
func SuggestGames(category string, accuracy float64) []models.GameType {
	var candidates []models.GameType
	banded := models.GamesWithTag(bandTag(accuracy))
	if len(banded) > 2 {
		banded = banded[:2]
	}
	candidates = append(candidates, banded...)
	if g, ok := models.GameForCategory(category); ok {
		candidates = append(candidates, g)
	}

	out := make([]models.GameType, 0, maxSuggestedGames)
	seen := make(map[models.GameType]bool)
	for _, g := range candidates {
		if seen[g] || len(out) == maxSuggestedGames {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// Recommend builds the ranked recommendation list from ranked weak and strong
// words and category summaries in ranking order.
func (g *Generator) Recommend(weak, strong []WordStat, categories []models.CategoryPerformanceSummary) []models.Recommendation {
	recs := []models.Recommendation{}

	if len(weak) > 0 {
		words := g.wordsOf(weak)
		recs = append(recs, models.Recommendation{
			Type:          models.RecommendationPractice,
			Title:         "Practice your weakest words",
			Description:   fmt.Sprintf("Review the %s you are finding hardest: %s.", plural(len(words), "word"), strings.Join(words, ", ")),
			Priority:      models.PriorityHigh,
			EstimatedTime: "10-15 minutes",
			TargetWords:   words,
		})
	}

	for _, c := range categories {
		if c.WeakWords == 0 || c.Priority == models.PriorityLow {
			continue
		}
		var inCategory []WordStat
		for _, w := range weak {
			if w.Item.Category == c.Category {
				inCategory = append(inCategory, w)
			}
		}
		if len(inCategory) == 0 {
			continue
		}
		recs = append(recs, models.Recommendation{
			Type:  models.RecommendationCategoryFocus,
			Title: fmt.Sprintf("Focus on %s", c.Category),
			Description: fmt.Sprintf("Your average accuracy in %s is %d%% with %s to work on.",
				c.Category, roundPercent(c.AverageAccuracy), plural(c.WeakWords, "weak word")),
			Priority:      c.Priority,
			EstimatedTime: "15-20 minutes",
			Category:      c.Category,
			TargetWords:   g.wordsOf(inCategory),
		})
	}

	if len(weak) == 0 && len(strong) > 0 {
		words := g.wordsOf(strong)
		recs = append(recs, models.Recommendation{
			Type:          models.RecommendationChallenge,
			Title:         "Take on a challenge",
			Description:   fmt.Sprintf("Keep your %s sharp with a timed game: %s.", plural(len(words), "strongest word"), strings.Join(words, ", ")),
			Priority:      models.PriorityLow,
			EstimatedTime: "5-10 minutes",
			TargetWords:   words,
		})
	}

	return recs
}

// Analyze builds the full weak-words analysis for one student's word stats
func (g *Generator) Analyze(stats []WordStat) models.WeakWordsAnalysis {
	weak := RankWeak(stats)
	strong := RankStrong(stats)
	categories := Aggregate(stats, GroupByCategory)

	analysis := models.WeakWordsAnalysis{
		WeakWords:       make([]models.WeakWord, 0, len(weak)),
		StrongWords:     make([]models.StrongWord, 0, len(strong)),
		Recommendations: g.Recommend(weak, strong, categories),
	}

	for _, w := range weak {
		analysis.WeakWords = append(analysis.WeakWords, models.WeakWord{
			ID:               w.Record.VocabularyID,
			Word:             w.Item.Word,
			Translation:      w.Item.Translation,
			Category:         w.Item.Category,
			Accuracy:         roundPercent(w.Accuracy),
			TotalAttempts:    w.Record.TotalAttempts(),
			CorrectAttempts:  w.Record.CorrectCount,
			LastPracticed:    w.Record.LastPracticedAt.UTC(),
			RecommendedGames: SuggestGames(w.Item.Category, w.Accuracy),
		})
	}

	for _, s := range strong {
		analysis.StrongWords = append(analysis.StrongWords, models.StrongWord{
			ID:            s.Record.VocabularyID,
			Word:          s.Item.Word,
			Category:      s.Item.Category,
			Accuracy:      roundPercent(s.Accuracy),
			TotalAttempts: s.Record.TotalAttempts(),
			MasteryLevel:  s.Record.MasteryLevel,
		})
	}

	var sum float64
	for _, s := range stats {
		sum += s.Accuracy
	}
	analysis.Summary = models.AnalysisSummary{
		TotalWords:       len(stats),
		WeakWordsCount:   len(weak),
		StrongWordsCount: len(strong),
	}
	if len(stats) > 0 {
		analysis.Summary.AverageAccuracy = roundPercent(sum / float64(len(stats)))
	}

	return analysis
}

func (g *Generator) wordsOf(stats []WordStat) []string {
	n := len(stats)
	if n > g.wordLimit {
		n = g.wordLimit
	}
	words := make([]string, n)
	for i := 0; i < n; i++ {
		words[i] = stats[i].Item.Word
	}
	return words
}

func roundPercent(v float64) int {
	return int(math.Round(v))
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
