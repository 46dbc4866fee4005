package mastery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wordmastery/internal/models"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		incorrect int
		want      float64
	}{
		{"no attempts", 0, 0, 0},
		{"3 of 10", 3, 7, 30},
		{"18 of 20", 18, 2, 90},
		{"2 of 10", 2, 8, 20},
		{"all correct", 4, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.VocabularyMasteryRecord{CorrectCount: tt.correct, IncorrectCount: tt.incorrect}
			assert.Equal(t, tt.want, Accuracy(r))
		})
	}
}

func TestAdvancePromotion(t *testing.T) {
	calc := NewCalculator(DefaultCurve())
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var r models.VocabularyMasteryRecord
	levels := []int{}
	for i := 0; i < 18; i++ {
		r = calc.Advance(r, true, at)
		levels = append(levels, r.MasteryLevel)
	}

	assert.Equal(t, []int{0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 3, 4, 4, 4, 5, 5, 5, 5}, levels)
	assert.Equal(t, 18, r.CorrectCount)
	assert.Equal(t, 18, r.CurrentStreak)
}

func TestAdvanceIncorrectResetsStreakButKeepsLevel(t *testing.T) {
	calc := NewCalculator(DefaultCurve())
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var r models.VocabularyMasteryRecord
	for i := 0; i < 5; i++ {
		r = calc.Advance(r, true, at)
	}
	assert.Equal(t, 1, r.MasteryLevel)
	assert.Equal(t, 5, r.CurrentStreak)

	r = calc.Advance(r, false, at)
	assert.Equal(t, 1, r.MasteryLevel)
	assert.Equal(t, 0, r.CurrentStreak)
	assert.Equal(t, 1, r.IncorrectCount)

	// the interrupted streak does not carry over
	r = calc.Advance(r, true, at)
	r = calc.Advance(r, true, at)
	assert.Equal(t, 1, r.MasteryLevel)
	r = calc.Advance(r, true, at)
	assert.Equal(t, 2, r.MasteryLevel)
}

func TestAdvanceLevelIsMonotone(t *testing.T) {
	calc := NewCalculator(DefaultCurve())
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	pattern := []bool{true, true, false, true, true, true, false, false, true, true, true, true, false, true}

	var r models.VocabularyMasteryRecord
	prev := 0
	for _, correct := range pattern {
		r = calc.Advance(r, correct, at)
		assert.GreaterOrEqual(t, r.MasteryLevel, prev)
		prev = r.MasteryLevel
	}
}

func TestAdvanceCustomCurve(t *testing.T) {
	calc := NewCalculator(Curve{PromotionStreak: 2, MaxLevel: 2})
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var r models.VocabularyMasteryRecord
	for i := 0; i < 10; i++ {
		r = calc.Advance(r, true, at)
	}
	assert.Equal(t, 2, r.MasteryLevel)
}

func TestNewCalculatorDefaults(t *testing.T) {
	calc := NewCalculator(Curve{})
	assert.Equal(t, DefaultCurve(), calc.Curve())
}

func TestAdvanceLastPracticedIsMax(t *testing.T) {
	calc := NewCalculator(DefaultCurve())
	late := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	early := late.Add(-time.Hour)

	var r models.VocabularyMasteryRecord
	r = calc.Advance(r, true, late)
	r = calc.Advance(r, false, early)

	assert.True(t, r.LastPracticedAt.Equal(late))
	assert.Equal(t, 1, r.CorrectCount)
	assert.Equal(t, 1, r.IncorrectCount)
}
