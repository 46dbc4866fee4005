package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"wordmastery/internal/metrics"
	"wordmastery/internal/models"
	"wordmastery/internal/repository"
	"wordmastery/internal/security"
)

// AttemptListener is notified after an attempt changed a student's mastery state
type AttemptListener interface {
	AttemptApplied(studentID string)
}

// SessionOptions tunes the session lifecycle
type SessionOptions struct {
	// InactivityWindow is how long an open session may go without attempts before it is reaped
	InactivityWindow time.Duration
	// AcceptLateAttempts applies new attempts to reaped sessions instead of rejecting them
	AcceptLateAttempts bool
}

// SessionService records game sessions and their word attempts
type SessionService struct {
	sessions  *repository.SessionRepository
	store     *repository.MasteryRepository
	logger    *zap.Logger
	opts      SessionOptions
	listeners []AttemptListener
	now       func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessions *repository.SessionRepository, store *repository.MasteryRepository, logger *zap.Logger, opts SessionOptions) *SessionService {
	if opts.InactivityWindow <= 0 {
		opts.InactivityWindow = 10 * time.Minute
	}
	return &SessionService{
		sessions: sessions,
		store:    store,
		logger:   logger,
		opts:     opts,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddListener registers l for applied-attempt notifications
func (s *SessionService) AddListener(l AttemptListener) {
	s.listeners = append(s.listeners, l)
}

// StartSession opens a new session. Whether the game is skill based comes
// from the registry, never from the caller.
func (s *SessionService) StartSession(ctx context.Context, studentID string, gameType models.GameType, mode models.Mode, assignmentID string) (*models.GameSession, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, fmt.Errorf("%w: student id is required", ErrInvalidRequest)
	}

	game, ok := models.LookupGame(gameType)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameType, gameType)
	}

	if mode == "" {
		mode = models.ModeNormal
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	var assignment *string
	if mode == models.ModeAssignment {
		assignmentID = strings.TrimSpace(assignmentID)
		if assignmentID == "" {
			return nil, fmt.Errorf("%w: assignment sessions need an assignment id", ErrInvalidMode)
		}
		assignment = &assignmentID
	}

	now := s.now()
	session := &models.GameSession{
		ID:             security.GenerateSessionID(),
		StudentID:      studentID,
		GameType:       game.Type,
		Mode:           mode,
		AssignmentID:   assignment,
		IsSkillBased:   game.IsSkillBased,
		State:          models.SessionOpen,
		StartedAt:      now,
		LastActivityAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, storeUnavailable("start session", err)
	}

	metrics.SessionsStarted.WithLabelValues(string(game.Type)).Inc()
	s.logger.Debug("session started",
		zap.String("session_id", session.ID),
		zap.String("student_id", studentID),
		zap.String("game_type", string(game.Type)),
		zap.Bool("skill_based", game.IsSkillBased),
	)
	return session, nil
}

// GetSession returns a session by id
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*models.GameSession, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, storeUnavailable("get session", err)
	}
	return session, nil
}

// RecordAttempt ingests one word attempt. Replays of an already applied
// attempt succeed with OutcomeDuplicate and change nothing. Attempts from
// games that are not skill based are dropped with ErrSkillMismatch.
func (s *SessionService) RecordAttempt(ctx context.Context, sessionID string, ev models.AttemptEvent) (models.AttemptOutcome, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			metrics.AttemptsIngested.WithLabelValues("error").Inc()
		} else {
			metrics.AttemptsIngested.WithLabelValues("rejected").Inc()
		}
		return "", err
	}

	if !session.IsSkillBased {
		metrics.AttemptsIngested.WithLabelValues(string(models.OutcomeDropped)).Inc()
		s.logger.Warn("dropping word attempt from a game that is not skill based",
			zap.String("session_id", sessionID),
			zap.String("student_id", session.StudentID),
			zap.String("game_type", string(session.GameType)),
			zap.String("vocabulary_id", ev.VocabularyID),
		)
		return models.OutcomeDropped, ErrSkillMismatch
	}

	key, ok := ev.KeyFor(sessionID)
	if !ok || strings.TrimSpace(ev.VocabularyID) == "" {
		metrics.AttemptsIngested.WithLabelValues("rejected").Inc()
		return "", fmt.Errorf("%w: attempts need a vocabulary id and an idempotency key or sequence", ErrInvalidRequest)
	}

	if !session.IsOpen() {
		exists, err := s.store.AttemptExists(ctx, key)
		if err != nil {
			metrics.AttemptsIngested.WithLabelValues("error").Inc()
			return "", storeUnavailable("record attempt", err)
		}
		if exists {
			metrics.AttemptsIngested.WithLabelValues(string(models.OutcomeDuplicate)).Inc()
			return models.OutcomeDuplicate, nil
		}
		if !(s.opts.AcceptLateAttempts && session.State == models.SessionClosedIncomplete) {
			metrics.AttemptsIngested.WithLabelValues("rejected").Inc()
			return "", ErrSessionClosed
		}
	}

	now := s.now()
	attemptedAt := ev.Timestamp
	if attemptedAt.IsZero() {
		attemptedAt = now
	}

	rec, applied, err := s.store.ApplyAttempt(ctx, models.WordAttempt{
		IdempotencyKey: key,
		SessionID:      sessionID,
		StudentID:      session.StudentID,
		VocabularyID:   strings.TrimSpace(ev.VocabularyID),
		WasCorrect:     ev.WasCorrect,
		ResponseTimeMs: ev.ResponseTimeMs,
		AttemptedAt:    attemptedAt,
		ReceivedAt:     now,
	}, s.opts.AcceptLateAttempts)
	if errors.Is(err, repository.ErrSessionClosed) {
		metrics.AttemptsIngested.WithLabelValues("rejected").Inc()
		return "", ErrSessionClosed
	}
	if err != nil {
		metrics.AttemptsIngested.WithLabelValues("error").Inc()
		return "", storeUnavailable("record attempt", err)
	}

	if !applied {
		metrics.AttemptsIngested.WithLabelValues(string(models.OutcomeDuplicate)).Inc()
		return models.OutcomeDuplicate, nil
	}

	metrics.AttemptsIngested.WithLabelValues(string(models.OutcomeApplied)).Inc()
	s.logger.Debug("attempt applied",
		zap.String("session_id", sessionID),
		zap.String("student_id", session.StudentID),
		zap.String("vocabulary_id", rec.VocabularyID),
		zap.Bool("correct", ev.WasCorrect),
		zap.Int("mastery_level", rec.MasteryLevel),
	)
	for _, l := range s.listeners {
		l.AttemptApplied(session.StudentID)
	}
	return models.OutcomeApplied, nil
}

// EndSession closes an open session. Ending a session that is already
// closed is a successful no-op.
func (s *SessionService) EndSession(ctx context.Context, sessionID string, summary models.SessionSummary) (*models.GameSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsOpen() {
		return session, nil
	}

	ended, err := s.sessions.End(ctx, sessionID, models.SessionClosed, summary, s.now())
	if err != nil {
		return nil, storeUnavailable("end session", err)
	}
	if ended {
		metrics.SessionsEnded.WithLabelValues(string(models.SessionClosed)).Inc()
	}

	return s.GetSession(ctx, sessionID)
}

// ReapInactive marks open sessions idle for longer than the inactivity
// window as closed_incomplete. Their applied attempts are kept.
func (s *SessionService) ReapInactive(ctx context.Context, now time.Time) (int, error) {
	ids, err := s.sessions.CloseInactive(ctx, now.Add(-s.opts.InactivityWindow), now)
	if err != nil {
		return 0, storeUnavailable("reap sessions", err)
	}

	if len(ids) > 0 {
		metrics.SessionsEnded.WithLabelValues(string(models.SessionClosedIncomplete)).Add(float64(len(ids)))
		s.logger.Info("reaped inactive sessions",
			zap.Int("count", len(ids)),
			zap.Duration("inactivity_window", s.opts.InactivityWindow),
		)
	}
	return len(ids), nil
}
