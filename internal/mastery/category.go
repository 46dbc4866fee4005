package mastery

import (
	"sort"

	"wordmastery/internal/models"
)

// WordStat is a mastery record joined with its catalog entry and derived figures
type WordStat struct {
	Record         models.VocabularyMasteryRecord
	Item           models.VocabularyItem
	Accuracy       float64
	Classification Classification
}

// Evaluate derives accuracy and classification for every record.
// Records whose word is missing from catalog are reported as uncategorized.
func Evaluate(records []models.VocabularyMasteryRecord, catalog map[string]models.VocabularyItem) []WordStat {
	stats := make([]WordStat, 0, len(records))
	for _, r := range records {
		item, ok := catalog[r.VocabularyID]
		if !ok {
			item = models.UnknownVocabulary(r.VocabularyID)
		}
		if item.Category == "" {
			item.Category = models.UncategorizedCategory
		}
		acc := Accuracy(r)
		stats = append(stats, WordStat{
			Record:         r,
			Item:           item,
			Accuracy:       acc,
			Classification: Classify(r.TotalAttempts(), acc, r.MasteryLevel),
		})
	}
	return stats
}

// GroupBy selects the catalog attribute categories are rolled up by
type GroupBy string

const (
	GroupByCategory    GroupBy = "category"
	GroupBySubcategory GroupBy = "subcategory"
)

// Valid reports whether g is a known grouping
func (g GroupBy) Valid() bool {
	return g == GroupByCategory || g == GroupBySubcategory
}

func (g GroupBy) key(s WordStat) string {
	if g == GroupBySubcategory && s.Item.Subcategory != "" {
		return s.Item.Subcategory
	}
	return s.Item.Category
}

// CategoryPriority ranks a category by its average accuracy
func CategoryPriority(averageAccuracy float64) models.Priority {
	switch {
	case averageAccuracy < 60:
		return models.PriorityHigh
	case averageAccuracy < 80:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// Aggregate rolls word stats up per group. Every word weighs the same in the
// average regardless of how often it was attempted. Output is ordered by
// ascending accuracy, then name.
func Aggregate(stats []WordStat, groupBy GroupBy) []models.CategoryPerformanceSummary {
	type acc struct {
		summary models.CategoryPerformanceSummary
		sum     float64
	}
	groups := make(map[string]*acc)

	for _, s := range stats {
		name := groupBy.key(s)
		g, ok := groups[name]
		if !ok {
			g = &acc{summary: models.CategoryPerformanceSummary{Category: name}}
			groups[name] = g
		}
		g.summary.TotalWords++
		g.sum += s.Accuracy
		if s.Record.MasteryLevel >= StrongLevel {
			g.summary.MasteredWords++
		}
		if s.Classification == Weak {
			g.summary.WeakWords++
		}
	}

	out := make([]models.CategoryPerformanceSummary, 0, len(groups))
	for _, g := range groups {
		g.summary.AverageAccuracy = g.sum / float64(g.summary.TotalWords)
		g.summary.Priority = CategoryPriority(g.summary.AverageAccuracy)
		out = append(out, g.summary)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageAccuracy != out[j].AverageAccuracy {
			return out[i].AverageAccuracy < out[j].AverageAccuracy
		}
		return out[i].Category < out[j].Category
	})
	return out
}
