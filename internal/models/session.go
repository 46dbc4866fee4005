package models

import "time"

// SessionState is the lifecycle state of a game session
type SessionState string

const (
	SessionOpen             SessionState = "open"
	SessionClosed           SessionState = "closed"
	SessionClosedIncomplete SessionState = "closed_incomplete"
)

// GameSession represents one play-through of a game by a student
type GameSession struct {
	ID             string       `db:"id" json:"sessionId"`
	StudentID      string       `db:"student_id" json:"studentId"`
	GameType       GameType     `db:"game_type" json:"gameType"`
	Mode           Mode         `db:"mode" json:"mode"`
	AssignmentID   *string      `db:"assignment_id" json:"assignmentId,omitempty"`
	IsSkillBased   bool         `db:"is_skill_based" json:"isSkillBased"`
	State          SessionState `db:"state" json:"state"`
	StartedAt      time.Time    `db:"started_at" json:"startedAt"`
	EndedAt        *time.Time   `db:"ended_at" json:"endedAt,omitempty"`
	LastActivityAt time.Time    `db:"last_activity_at" json:"lastActivityAt"`
	Score          int          `db:"score" json:"score"`
	Outcome        string       `db:"outcome" json:"outcome"`
	AttemptCount   int          `db:"attempt_count" json:"attemptCount"`
}

// IsOpen reports whether the session still accepts attempts
func (s *GameSession) IsOpen() bool {
	return s.State == SessionOpen
}

// IsInactive reports whether the session has seen no activity within window
func (s *GameSession) IsInactive(now time.Time, window time.Duration) bool {
	return s.IsOpen() && s.LastActivityAt.Before(now.Add(-window))
}

// SessionSummary is reported by the game when a session ends
type SessionSummary struct {
	Score   int    `json:"score"`
	Outcome string `json:"outcome"`
}
