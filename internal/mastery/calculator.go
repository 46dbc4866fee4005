// Package mastery turns raw per-word counters into accuracy, mastery levels,
// weak/strong classifications, category roll-ups and practice recommendations.
// Everything here is pure and safe to recompute on every read.
package mastery

import (
	"time"

	"wordmastery/internal/models"
)

// Curve controls how mastery levels are earned
type Curve struct {
	// PromotionStreak is the number of consecutive correct answers per level
	PromotionStreak int
	// MaxLevel caps the mastery level
	MaxLevel int
}

// DefaultCurve promotes one level per three consecutive correct answers, up to level 5
func DefaultCurve() Curve {
	return Curve{PromotionStreak: 3, MaxLevel: 5}
}

// Calculator advances mastery records
type Calculator struct {
	curve Curve
}

// NewCalculator creates a calculator; non-positive curve values fall back to the defaults
func NewCalculator(curve Curve) *Calculator {
	def := DefaultCurve()
	if curve.PromotionStreak <= 0 {
		curve.PromotionStreak = def.PromotionStreak
	}
	if curve.MaxLevel <= 0 {
		curve.MaxLevel = def.MaxLevel
	}
	return &Calculator{curve: curve}
}

// Curve returns the promotion curve in use
func (c *Calculator) Curve() Curve {
	return c.curve
}

// Accuracy returns the percentage of correct attempts, 0 when nothing was attempted
func Accuracy(r models.VocabularyMasteryRecord) float64 {
	total := r.TotalAttempts()
	if total == 0 {
		return 0
	}
	return float64(r.CorrectCount*100) / float64(total)
}

// Advance applies one attempt to r and returns the updated record.
// The level only ever goes up; an incorrect answer resets the streak.
func (c *Calculator) Advance(r models.VocabularyMasteryRecord, wasCorrect bool, at time.Time) models.VocabularyMasteryRecord {
	if wasCorrect {
		r.CorrectCount++
		r.CurrentStreak++
		if r.CurrentStreak%c.curve.PromotionStreak == 0 && r.MasteryLevel < c.curve.MaxLevel {
			r.MasteryLevel++
		}
	} else {
		r.IncorrectCount++
		r.CurrentStreak = 0
	}

	at = at.UTC()
	if at.After(r.LastPracticedAt) {
		r.LastPracticedAt = at
	}
	return r
}
