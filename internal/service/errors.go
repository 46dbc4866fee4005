package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidGameType is returned for a game type missing from the registry
	ErrInvalidGameType = errors.New("invalid game type")
	// ErrInvalidMode is returned for an unknown mode or an assignment session without an assignment id
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidRequest is returned when a required field is missing
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSessionNotFound is returned for unknown sessions
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned for new attempts against a closed session.
	// It matches ErrSessionNotFound so callers can treat both the same way.
	ErrSessionClosed = fmt.Errorf("%w: session closed", ErrSessionNotFound)
	// ErrSkillMismatch is returned when a game that is not skill based reports
	// a word attempt. The attempt is dropped; gameplay is not affected.
	ErrSkillMismatch = errors.New("attempt reported for a game that is not skill based")
	// ErrStoreUnavailable wraps database failures. Callers should retry later.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func storeUnavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
