package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"wordmastery/internal/service"
	"wordmastery/internal/validation"
)

type errorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondWithError(w http.ResponseWriter, logger *zap.Logger, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		if status >= http.StatusInternalServerError {
			logger.Error(logMsg, zap.Error(err))
		} else {
			logger.Debug(logMsg, zap.Error(err))
		}
	}

	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", retryAfterSeconds)
	}
	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps service errors to status codes
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, logMsg string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidGameType),
		errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrInvalidRequest):
		respondWithError(w, logger, http.StatusBadRequest, err.Error(), logMsg, err)
	case errors.Is(err, service.ErrSessionClosed):
		respondWithError(w, logger, http.StatusNotFound, "Session is closed", logMsg, err)
	case errors.Is(err, service.ErrSessionNotFound):
		respondWithError(w, logger, http.StatusNotFound, "Session not found", logMsg, err)
	case errors.Is(err, service.ErrStoreUnavailable):
		respondWithError(w, logger, http.StatusServiceUnavailable, ErrServiceUnavailable, logMsg, err)
	default:
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. An empty
// body is accepted when allowEmpty is set. On failure the response has been
// written and false is returned.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst interface{}, allowEmpty bool) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil && !(allowEmpty && errors.Is(err, io.EOF)) {
		respondWithError(w, logger, http.StatusBadRequest, ErrInvalidJSON, "", err)
		return false
	}

	if err := validation.Struct(dst); err != nil {
		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: fieldErrs})
			return false
		}
		respondWithError(w, logger, http.StatusInternalServerError, ErrInternalServerError, "validating request", err)
		return false
	}
	return true
}
