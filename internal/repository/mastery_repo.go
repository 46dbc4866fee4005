package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wordmastery/internal/database"
	"wordmastery/internal/mastery"
	"wordmastery/internal/models"
)

const masteryColumns = `student_id, vocabulary_id, correct_count, incorrect_count, current_streak,
	mastery_level, last_practiced_at`

var attemptColumns = []string{
	"idempotency_key", "session_id", "student_id", "vocabulary_id",
	"was_correct", "response_time_ms", "attempted_at", "received_at",
}

var errDuplicateAttempt = errors.New("duplicate attempt")

// ErrSessionClosed is returned when an attempt targets a session that is no
// longer accepting attempts
var ErrSessionClosed = errors.New("session closed")

// MasteryRepository stores per-student, per-word performance counters.
// Counters only ever grow; there is deliberately no way to decrement or reset them.
type MasteryRepository struct {
	db   *database.DB
	calc *mastery.Calculator
}

// NewMasteryRepository creates a new mastery repository
func NewMasteryRepository(db *database.DB, calc *mastery.Calculator) *MasteryRepository {
	return &MasteryRepository{db: db, calc: calc}
}

// ApplyAttempt records an attempt and folds it into the student's mastery
// record for the word, all in one transaction. An attempt whose idempotency
// key was already applied changes nothing and reports applied = false.
// The session must still be open, or closed_incomplete when acceptLate is
// set; otherwise nothing is written and ErrSessionClosed is returned.
func (r *MasteryRepository) ApplyAttempt(ctx context.Context, a models.WordAttempt, acceptLate bool) (models.VocabularyMasteryRecord, bool, error) {
	var rec models.VocabularyMasteryRecord
	attemptedAt := a.AttemptedAt.UTC()
	receivedAt := a.ReceivedAt.UTC()

	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		dialect := tx.GetDialect()

		res, err := tx.ExecContext(ctx, dialect.InsertIgnore("word_attempts", attemptColumns),
			a.IdempotencyKey, a.SessionID, a.StudentID, a.VocabularyID,
			a.WasCorrect, a.ResponseTimeMs, attemptedAt, receivedAt)
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}
		if n == 0 {
			return errDuplicateAttempt
		}

		// the session may have been ended or reaped since the caller read it
		lateState := models.SessionOpen
		if acceptLate {
			lateState = models.SessionClosedIncomplete
		}
		res, err = tx.ExecContext(ctx, `
			UPDATE game_sessions
			SET attempt_count = attempt_count + 1,
			    last_activity_at = CASE WHEN last_activity_at < ? THEN ? ELSE last_activity_at END
			WHERE id = ? AND state IN (?, ?)
		`, receivedAt, receivedAt, a.SessionID, models.SessionOpen, lateState)
		if err != nil {
			return fmt.Errorf("update session activity: %w", err)
		}
		if n, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("update session activity: %w", err)
		}
		if n == 0 {
			return ErrSessionClosed
		}

		_, err = tx.ExecContext(ctx,
			dialect.InsertIgnore("vocabulary_mastery", []string{
				"student_id", "vocabulary_id", "correct_count", "incorrect_count",
				"current_streak", "mastery_level", "last_practiced_at",
			}),
			a.StudentID, a.VocabularyID, 0, 0, 0, 0, attemptedAt)
		if err != nil {
			return fmt.Errorf("ensure mastery record: %w", err)
		}

		err = tx.GetContext(ctx, &rec,
			`SELECT `+masteryColumns+` FROM vocabulary_mastery WHERE student_id = ? AND vocabulary_id = ?`+dialect.LockClause(),
			a.StudentID, a.VocabularyID)
		if err != nil {
			return fmt.Errorf("lock mastery record: %w", err)
		}

		rec = r.calc.Advance(rec, a.WasCorrect, attemptedAt)

		_, err = tx.ExecContext(ctx, `
			UPDATE vocabulary_mastery
			SET correct_count = ?, incorrect_count = ?, current_streak = ?, mastery_level = ?, last_practiced_at = ?
			WHERE student_id = ? AND vocabulary_id = ?
		`, rec.CorrectCount, rec.IncorrectCount, rec.CurrentStreak, rec.MasteryLevel, rec.LastPracticedAt,
			a.StudentID, a.VocabularyID)
		if err != nil {
			return fmt.Errorf("update mastery record: %w", err)
		}
		return nil
	})

	if errors.Is(err, errDuplicateAttempt) {
		current, err := r.GetRecord(ctx, a.StudentID, a.VocabularyID)
		if errors.Is(err, ErrNotFound) {
			return models.VocabularyMasteryRecord{StudentID: a.StudentID, VocabularyID: a.VocabularyID}, false, nil
		}
		if err != nil {
			return models.VocabularyMasteryRecord{}, false, err
		}
		return *current, false, nil
	}
	if err != nil {
		return models.VocabularyMasteryRecord{}, false, err
	}
	return rec, true, nil
}

// GetRecord retrieves the mastery record of one student for one word
func (r *MasteryRepository) GetRecord(ctx context.Context, studentID, vocabularyID string) (*models.VocabularyMasteryRecord, error) {
	rec := &models.VocabularyMasteryRecord{}
	err := r.db.GetContext(ctx, rec,
		`SELECT `+masteryColumns+` FROM vocabulary_mastery WHERE student_id = ? AND vocabulary_id = ?`,
		studentID, vocabularyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get mastery record: %w", err)
	}
	return rec, nil
}

// ListStudentRecords returns every mastery record of a student ordered by word id
func (r *MasteryRepository) ListStudentRecords(ctx context.Context, studentID string) ([]models.VocabularyMasteryRecord, error) {
	records := []models.VocabularyMasteryRecord{}
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+masteryColumns+` FROM vocabulary_mastery WHERE student_id = ? ORDER BY vocabulary_id`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("list mastery records: %w", err)
	}
	return records, nil
}

// ListAllRecords returns every mastery record ordered by student and word
func (r *MasteryRepository) ListAllRecords(ctx context.Context) ([]models.VocabularyMasteryRecord, error) {
	records := []models.VocabularyMasteryRecord{}
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+masteryColumns+` FROM vocabulary_mastery ORDER BY student_id, vocabulary_id`)
	if err != nil {
		return nil, fmt.Errorf("list mastery records: %w", err)
	}
	return records, nil
}

// AttemptExists reports whether an attempt with the idempotency key was applied
func (r *MasteryRepository) AttemptExists(ctx context.Context, idempotencyKey string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM word_attempts WHERE idempotency_key = ?`, idempotencyKey)
	if err != nil {
		return false, fmt.Errorf("check attempt: %w", err)
	}
	return count > 0, nil
}

// CountSessionAttempts returns the number of applied attempts in a session
func (r *MasteryRepository) CountSessionAttempts(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM word_attempts WHERE session_id = ?`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}

// ImportRecord restores an exported record. Existing rows win, so importing
// never lowers a counter.
func (r *MasteryRepository) ImportRecord(ctx context.Context, rec models.VocabularyMasteryRecord) (bool, error) {
	lastPracticed := rec.LastPracticedAt
	if lastPracticed.IsZero() {
		lastPracticed = time.Unix(0, 0)
	}
	res, err := r.db.ExecContext(ctx,
		r.db.Dialect.InsertIgnore("vocabulary_mastery", []string{
			"student_id", "vocabulary_id", "correct_count", "incorrect_count",
			"current_streak", "mastery_level", "last_practiced_at",
		}),
		rec.StudentID, rec.VocabularyID, rec.CorrectCount, rec.IncorrectCount,
		rec.CurrentStreak, rec.MasteryLevel, lastPracticed.UTC())
	if err != nil {
		return false, fmt.Errorf("import mastery record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("import mastery record: %w", err)
	}
	return n > 0, nil
}

// ListAttempts returns applied attempts, for one student or for everyone when
// studentID is empty, ordered by receipt
func (r *MasteryRepository) ListAttempts(ctx context.Context, studentID string) ([]models.WordAttempt, error) {
	query := `SELECT idempotency_key, session_id, student_id, vocabulary_id, was_correct,
		response_time_ms, attempted_at, received_at FROM word_attempts`
	var args []interface{}
	if studentID != "" {
		query += ` WHERE student_id = ?`
		args = append(args, studentID)
	}
	query += ` ORDER BY received_at, idempotency_key`

	attempts := []models.WordAttempt{}
	if err := r.db.SelectContext(ctx, &attempts, query, args...); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// ImportAttempts restores the attempt log without touching mastery records.
// Attempts whose key already exists are skipped.
func (r *MasteryRepository) ImportAttempts(ctx context.Context, attempts []models.WordAttempt) (int, error) {
	imported := 0
	err := r.db.WithTx(ctx, func(tx *database.Tx) error {
		query := tx.GetDialect().InsertIgnore("word_attempts", attemptColumns)
		for _, a := range attempts {
			res, err := tx.ExecContext(ctx, query,
				a.IdempotencyKey, a.SessionID, a.StudentID, a.VocabularyID,
				a.WasCorrect, a.ResponseTimeMs, a.AttemptedAt.UTC(), a.ReceivedAt.UTC())
			if err != nil {
				return fmt.Errorf("import attempt %s: %w", a.IdempotencyKey, err)
			}
			if n, _ := res.RowsAffected(); n > 0 {
				imported++
			}
		}
		return nil
	})
	return imported, err
}
