package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wordmastery/internal/mastery"
	"wordmastery/internal/models"
	"wordmastery/internal/service"
)

// AnalysisHandler serves the read-side projections of a student's mastery state
type AnalysisHandler struct {
	analysis *service.AnalysisService
	email    *service.EmailService
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysis *service.AnalysisService, email *service.EmailService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, email: email, logger: logger}
}

// RegisterRoutes registers the analysis routes
func (h *AnalysisHandler) RegisterRoutes(r chi.Router) {
	r.Get("/games", h.ListGames)
	r.Route("/students/{studentId}", func(r chi.Router) {
		r.Get("/weak-words-analysis", h.WeakWordsAnalysis)
		r.Get("/categories", h.Categories)
		r.Post("/progress-report", h.ProgressReport)
	})
}

// ListGames returns the game registry
func (h *AnalysisHandler) ListGames(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, models.Games())
}

// WeakWordsAnalysis returns a student's weak and strong words with recommendations
func (h *AnalysisHandler) WeakWordsAnalysis(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.student(w, r)
	if !ok {
		return
	}

	analysis, err := h.analysis.WeakWordsAnalysis(r.Context(), studentID)
	if err != nil {
		respondWithServiceError(w, h.logger, "building weak words analysis", err)
		return
	}
	respondWithJSON(w, http.StatusOK, analysis)
}

// Categories returns a student's per-category roll-up
func (h *AnalysisHandler) Categories(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.student(w, r)
	if !ok {
		return
	}

	groupBy := mastery.GroupBy(r.URL.Query().Get("groupBy"))
	summaries, err := h.analysis.Categories(r.Context(), studentID, groupBy)
	if err != nil {
		respondWithServiceError(w, h.logger, "building category summary", err)
		return
	}
	respondWithJSON(w, http.StatusOK, summaries)
}

type progressReportRequest struct {
	Email       string `json:"email" validate:"required,email"`
	StudentName string `json:"studentName" validate:"required,notblank,max=100"`
}

type progressReportResponse struct {
	Sent bool `json:"sent"`
}

// ProgressReport emails a student's analysis. Nothing is sent when email
// delivery is not configured.
func (h *AnalysisHandler) ProgressReport(w http.ResponseWriter, r *http.Request) {
	studentID, ok := h.student(w, r)
	if !ok {
		return
	}

	var req progressReportRequest
	if !decodeAndValidate(w, r, h.logger, &req, false) {
		return
	}

	analysis, err := h.analysis.WeakWordsAnalysis(r.Context(), studentID)
	if err != nil {
		respondWithServiceError(w, h.logger, "building weak words analysis", err)
		return
	}

	if err := h.email.SendProgressReport(r.Context(), req.Email, req.StudentName, analysis); err != nil {
		respondWithError(w, h.logger, http.StatusBadGateway, "Failed to send progress report", "", err)
		return
	}
	respondWithJSON(w, http.StatusOK, progressReportResponse{Sent: h.email.IsEnabled()})
}

func (h *AnalysisHandler) student(w http.ResponseWriter, r *http.Request) (string, bool) {
	studentID := chi.URLParam(r, "studentId")
	if !canActFor(r, studentID) {
		respondWithError(w, h.logger, http.StatusForbidden, ErrForbidden, "", nil)
		return "", false
	}
	return studentID, true
}
