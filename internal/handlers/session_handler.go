package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wordmastery/internal/models"
	"wordmastery/internal/service"
)

// SessionHandler handles session lifecycle and attempt ingestion requests
type SessionHandler struct {
	sessions *service.SessionService
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// RegisterRoutes registers the session routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.StartSession)
	r.Post("/sessions/{sessionId}/attempts", h.RecordAttempt)
	r.Post("/sessions/{sessionId}/end", h.EndSession)
}

type startSessionRequest struct {
	StudentID    string `json:"studentId" validate:"required,notblank,max=128"`
	GameType     string `json:"gameType" validate:"required"`
	Mode         string `json:"mode" validate:"omitempty,oneof=normal assignment"`
	AssignmentID string `json:"assignmentId,omitempty" validate:"max=128"`
}

type sessionResponse struct {
	SessionID    string              `json:"sessionId"`
	GameType     models.GameType     `json:"gameType"`
	IsSkillBased bool                `json:"isSkillBased"`
	State        models.SessionState `json:"state"`
}

// StartSession opens a game session
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeAndValidate(w, r, h.logger, &req, false) {
		return
	}
	if !canActFor(r, req.StudentID) {
		respondWithError(w, h.logger, http.StatusForbidden, ErrForbidden, "", nil)
		return
	}

	session, err := h.sessions.StartSession(r.Context(), req.StudentID, models.GameType(req.GameType), models.Mode(req.Mode), req.AssignmentID)
	if err != nil {
		respondWithServiceError(w, h.logger, "starting session", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sessionResponse{
		SessionID:    session.ID,
		GameType:     session.GameType,
		IsSkillBased: session.IsSkillBased,
		State:        session.State,
	})
}

type attemptRequest struct {
	VocabularyID   string     `json:"vocabularyId" validate:"required,notblank,max=128"`
	WasCorrect     *bool      `json:"wasCorrect" validate:"required"`
	ResponseTimeMs int        `json:"responseTimeMs" validate:"gte=0"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty" validate:"max=256"`
	Sequence       *int64     `json:"sequence,omitempty" validate:"omitempty,gte=0"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

type attemptResponse struct {
	Status models.AttemptOutcome `json:"status"`
}

// RecordAttempt ingests one word attempt. Replays and attempts from games
// that are not skill based are acknowledged without changing anything.
func (h *SessionHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	var req attemptRequest
	if !decodeAndValidate(w, r, h.logger, &req, false) {
		return
	}
	if !h.authorizeSession(w, r, sessionID) {
		return
	}

	ev := models.AttemptEvent{
		VocabularyID:   req.VocabularyID,
		WasCorrect:     *req.WasCorrect,
		ResponseTimeMs: req.ResponseTimeMs,
		IdempotencyKey: req.IdempotencyKey,
		Sequence:       req.Sequence,
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	outcome, err := h.sessions.RecordAttempt(r.Context(), sessionID, ev)
	if errors.Is(err, service.ErrSkillMismatch) {
		respondWithJSON(w, http.StatusAccepted, attemptResponse{Status: models.OutcomeDropped})
		return
	}
	if err != nil {
		respondWithServiceError(w, h.logger, "recording attempt", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, attemptResponse{Status: outcome})
}

type endSessionRequest struct {
	Score   int    `json:"score" validate:"gte=0"`
	Outcome string `json:"outcome" validate:"max=64"`
}

// EndSession closes a session. Ending a closed session returns its current state.
func (h *SessionHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")

	var req endSessionRequest
	if !decodeAndValidate(w, r, h.logger, &req, true) {
		return
	}
	if !h.authorizeSession(w, r, sessionID) {
		return
	}

	session, err := h.sessions.EndSession(r.Context(), sessionID, models.SessionSummary{Score: req.Score, Outcome: req.Outcome})
	if err != nil {
		respondWithServiceError(w, h.logger, "ending session", err)
		return
	}

	respondWithJSON(w, http.StatusOK, sessionResponse{
		SessionID:    session.ID,
		GameType:     session.GameType,
		IsSkillBased: session.IsSkillBased,
		State:        session.State,
	})
}

// authorizeSession checks that the caller owns the session. Without
// authentication every caller does.
func (h *SessionHandler) authorizeSession(w http.ResponseWriter, r *http.Request, sessionID string) bool {
	if GetClaimsFromContext(r.Context()) == nil {
		return true
	}

	session, err := h.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		respondWithServiceError(w, h.logger, "loading session", err)
		return false
	}
	if !canActFor(r, session.StudentID) {
		respondWithError(w, h.logger, http.StatusForbidden, ErrForbidden, "", nil)
		return false
	}
	return true
}
