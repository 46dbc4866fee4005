package models

import (
	"fmt"
	"time"
)

// AttemptEvent is a single word answer reported by a game client
type AttemptEvent struct {
	VocabularyID   string
	WasCorrect     bool
	ResponseTimeMs int
	// IdempotencyKey is preferred; Sequence is used to derive one when it is empty
	IdempotencyKey string
	Sequence       *int64
	Timestamp      time.Time
}

// KeyFor returns the idempotency key of the event within sessionID. Keys are
// always prefixed with the session so clients only need them unique per session.
func (e AttemptEvent) KeyFor(sessionID string) (string, bool) {
	if e.IdempotencyKey != "" {
		return fmt.Sprintf("%s:%s", sessionID, e.IdempotencyKey), true
	}
	if e.Sequence != nil {
		return fmt.Sprintf("%s:%d", sessionID, *e.Sequence), true
	}
	return "", false
}

// AttemptOutcome reports what happened to an ingested attempt
type AttemptOutcome string

const (
	OutcomeApplied   AttemptOutcome = "applied"
	OutcomeDuplicate AttemptOutcome = "duplicate"
	OutcomeDropped   AttemptOutcome = "dropped"
)

// WordAttempt is a stored, applied attempt
type WordAttempt struct {
	IdempotencyKey string    `db:"idempotency_key" json:"idempotencyKey"`
	SessionID      string    `db:"session_id" json:"sessionId"`
	StudentID      string    `db:"student_id" json:"studentId"`
	VocabularyID   string    `db:"vocabulary_id" json:"vocabularyId"`
	WasCorrect     bool      `db:"was_correct" json:"wasCorrect"`
	ResponseTimeMs int       `db:"response_time_ms" json:"responseTimeMs"`
	AttemptedAt    time.Time `db:"attempted_at" json:"attemptedAt"`
	ReceivedAt     time.Time `db:"received_at" json:"receivedAt"`
}
