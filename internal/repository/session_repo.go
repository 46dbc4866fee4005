package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wordmastery/internal/database"
	"wordmastery/internal/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

const sessionColumns = `id, student_id, game_type, mode, assignment_id, is_skill_based, state,
	started_at, ended_at, last_activity_at, score, outcome, attempt_count`

// SessionRepository handles game session database operations
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new game session
func (r *SessionRepository) Create(ctx context.Context, s *models.GameSession) error {
	query := `
		INSERT INTO game_sessions (id, student_id, game_type, mode, assignment_id, is_skill_based,
			state, started_at, last_activity_at, score, outcome, attempt_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.StudentID, s.GameType, s.Mode, s.AssignmentID, s.IsSkillBased,
		s.State, s.StartedAt.UTC(), s.LastActivityAt.UTC(), s.Score, s.Outcome, s.AttemptCount,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByID retrieves a game session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE id = ?`

	s := &models.GameSession{}
	if err := r.db.GetContext(ctx, s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// End closes an open session with the given final state and summary.
// It reports false when the session was not open, leaving it untouched.
func (r *SessionRepository) End(ctx context.Context, id string, state models.SessionState, summary models.SessionSummary, endedAt time.Time) (bool, error) {
	query := `
		UPDATE game_sessions
		SET state = ?, ended_at = ?, score = ?, outcome = ?
		WHERE id = ? AND state = ?
	`

	res, err := r.db.ExecContext(ctx, query, state, endedAt.UTC(), summary.Score, summary.Outcome, id, models.SessionOpen)
	if err != nil {
		return false, fmt.Errorf("end session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("end session: %w", err)
	}
	return n > 0, nil
}

// CloseInactive marks every open session idle since before cutoff as
// closed_incomplete and returns the ids of the sessions it closed.
func (r *SessionRepository) CloseInactive(ctx context.Context, cutoff, now time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := tx.SelectContext(ctx, &ids,
			`SELECT id FROM game_sessions WHERE state = ? AND last_activity_at < ? ORDER BY id`+tx.GetDialect().LockClause(),
			models.SessionOpen, cutoff.UTC()); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		query, args, err := r.db.In(`
			UPDATE game_sessions SET state = ?, ended_at = ?
			WHERE state = ? AND id IN (?)
		`, models.SessionClosedIncomplete, now.UTC(), models.SessionOpen, ids)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("close inactive sessions: %w", err)
	}
	return ids, nil
}

// ListByStudent returns a student's sessions, oldest first
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions WHERE student_id = ? ORDER BY started_at, id`

	sessions := []models.GameSession{}
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListAll returns every session, oldest first
func (r *SessionRepository) ListAll(ctx context.Context) ([]models.GameSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM game_sessions ORDER BY started_at, id`

	sessions := []models.GameSession{}
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Import restores sessions from an export, keeping rows that already exist
func (r *SessionRepository) Import(ctx context.Context, sessions []models.GameSession) (int, error) {
	cols := []string{"id", "student_id", "game_type", "mode", "assignment_id", "is_skill_based", "state",
		"started_at", "ended_at", "last_activity_at", "score", "outcome", "attempt_count"}

	imported := 0
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := tx.GetDialect().InsertIgnore("game_sessions", cols)
		for _, s := range sessions {
			var endedAt *time.Time
			if s.EndedAt != nil {
				t := s.EndedAt.UTC()
				endedAt = &t
			}
			res, err := tx.ExecContext(ctx, query,
				s.ID, s.StudentID, s.GameType, s.Mode, s.AssignmentID, s.IsSkillBased, s.State,
				s.StartedAt.UTC(), endedAt, s.LastActivityAt.UTC(), s.Score, s.Outcome, s.AttemptCount)
			if err != nil {
				return fmt.Errorf("import session %s: %w", s.ID, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				imported++
			}
		}
		return nil
	})
	return imported, err
}
