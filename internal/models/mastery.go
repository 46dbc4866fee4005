package models

import "time"

// VocabularyMasteryRecord is the accumulated performance of one student on one word
type VocabularyMasteryRecord struct {
	StudentID       string    `db:"student_id" json:"studentId"`
	VocabularyID    string    `db:"vocabulary_id" json:"vocabularyId"`
	CorrectCount    int       `db:"correct_count" json:"correctCount"`
	IncorrectCount  int       `db:"incorrect_count" json:"incorrectCount"`
	CurrentStreak   int       `db:"current_streak" json:"currentStreak"`
	MasteryLevel    int       `db:"mastery_level" json:"masteryLevel"`
	LastPracticedAt time.Time `db:"last_practiced_at" json:"lastPracticedAt"`
}

// TotalAttempts returns the number of attempts recorded for the word
func (r VocabularyMasteryRecord) TotalAttempts() int {
	return r.CorrectCount + r.IncorrectCount
}
