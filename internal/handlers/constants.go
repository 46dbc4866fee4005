package handlers

const (
	ErrInvalidJSON         = "Invalid JSON body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
	ErrServiceUnavailable  = "Service temporarily unavailable"

	// retryAfterSeconds is sent with 503 responses
	retryAfterSeconds = "5"

	maxBodyBytes = 1 << 20
)
