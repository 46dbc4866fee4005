package mastery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"wordmastery/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		incorrect int
		level     int
		want      Classification
	}{
		{"3 of 10 is weak", 3, 7, 0, Weak},
		{"18 of 20 at level 5 is strong", 18, 2, 5, Strong},
		{"2 of 10 is weak", 2, 8, 0, Weak},
		{"high accuracy but low level", 18, 2, 3, Unclassified},
		{"exactly 70 is not weak", 7, 3, 2, Unclassified},
		{"exactly 85 is not strong", 17, 3, 5, Unclassified},
		{"two attempts both wrong", 0, 2, 0, Unclassified},
		{"two attempts both right", 2, 0, 5, Unclassified},
		{"no attempts", 0, 0, 0, Unclassified},
		{"three attempts all wrong", 0, 3, 0, Weak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := models.VocabularyMasteryRecord{CorrectCount: tt.correct, IncorrectCount: tt.incorrect, MasteryLevel: tt.level}
			assert.Equal(t, tt.want, Classify(r.TotalAttempts(), Accuracy(r), r.MasteryLevel))
		})
	}
}

func TestClassifyIsDisjointAndNeedsSignal(t *testing.T) {
	for correct := 0; correct <= 25; correct++ {
		for incorrect := 0; incorrect <= 25; incorrect++ {
			for level := 0; level <= 5; level++ {
				r := models.VocabularyMasteryRecord{CorrectCount: correct, IncorrectCount: incorrect, MasteryLevel: level}
				acc := Accuracy(r)
				c := Classify(r.TotalAttempts(), acc, level)

				if r.TotalAttempts() < MinAttempts {
					assert.Equal(t, Unclassified, c, "c=%d i=%d", correct, incorrect)
					continue
				}
				isWeak := acc < WeakBelow
				isStrong := acc > StrongAbove && level >= StrongLevel
				assert.False(t, isWeak && isStrong)
				if isWeak {
					assert.Equal(t, Weak, c)
				}
				if isStrong {
					assert.Equal(t, Strong, c)
				}
			}
		}
	}
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "weak", Weak.String())
	assert.Equal(t, "strong", Strong.String())
	assert.Equal(t, "unclassified", Unclassified.String())
}
