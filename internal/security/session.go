package security

import (
	"github.com/google/uuid"
)

// GenerateSessionID creates a new UUID for game session identification
func GenerateSessionID() string {
	return uuid.New().String()
}

// IsSessionID reports whether id has the shape of a generated session id
func IsSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
