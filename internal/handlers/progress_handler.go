package handlers

import (
	"net/http"

	"kidslearning/internal/models"
	"kidslearning/internal/service"
	"kidslearning/internal/validation"
)

// ProgressHandler serves the learner's progress, achievements and reports
type ProgressHandler struct {
	progress *service.ProgressService
	email    *service.EmailService
}

// NewProgressHandler creates a new progress handler. email may be nil.
func NewProgressHandler(progress *service.ProgressService, email *service.EmailService) *ProgressHandler {
	return &ProgressHandler{
		progress: progress,
		email:    email,
	}
}

type completeRequest struct {
	Grade      models.Grade   `json:"grade"`
	Subject    models.Subject `json:"subject"`
	ActivityID string         `json:"activityId"`
	Score      *float64       `json:"score"`
}

type achievementRequest struct {
	Grade         models.Grade   `json:"grade"`
	Subject       models.Subject `json:"subject"`
	AchievementID string         `json:"achievementId"`
}

type reportRequest struct {
	Email string `json:"email"`
}

// Status reports where progress is being kept
func (h *ProgressHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progress.Status())
}

// ListProgress returns every progress record
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progress.AllProgress())
}

// GetProgress returns one record, or 404 when the pair has no activity
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	grade := models.Grade(r.PathValue("grade"))
	subject := models.Subject(r.PathValue("subject"))
	if err := validatePair(grade, subject); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	record, ok := h.progress.GetProgress(grade, subject)
	if !ok {
		respondWithError(w, http.StatusNotFound, "No progress recorded yet", "", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, record)
}

// Complete records an activity completion
func (h *ProgressHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validatePair(req.Grade, req.Subject); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := validation.ValidateIdentifier("activityId", req.ActivityID); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	result, err := h.progress.RecordCompletion(r.Context(), req.Grade, req.Subject, req.ActivityID, req.Score)
	if err != nil {
		respondWithServiceError(w, "Failed to record completion", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// AddAchievement tags an achievement on a record
func (h *ProgressHandler) AddAchievement(w http.ResponseWriter, r *http.Request) {
	var req achievementRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validatePair(req.Grade, req.Subject); err != nil {
		respondWithServiceError(w, "", err)
		return
	}
	if err := validation.ValidateIdentifier("achievementId", req.AchievementID); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	added, err := h.progress.AddAchievement(req.Grade, req.Subject, req.AchievementID)
	if err != nil {
		respondWithServiceError(w, "Failed to add achievement", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// Overall returns the rollup across every record
func (h *ProgressHandler) Overall(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progress.OverallProgress())
}

// Subjects returns the per-subject rollup
func (h *ProgressHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progress.SubjectBreakdown())
}

// Achievements returns the catalog with unlock state
func (h *ProgressHandler) Achievements(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.progress.Achievements())
}

// SendReport emails a progress summary to a parent
func (h *ProgressHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	sent := false
	if h.email != nil {
		var err error
		sent, err = h.email.SendProgressReport(r.Context(), req.Email, service.BuildProgressReport(h.progress))
		if err != nil {
			respondWithError(w, http.StatusBadGateway, "Failed to send report", "Failed to send progress report", err)
			return
		}
	}
	respondWithJSON(w, http.StatusAccepted, map[string]bool{"sent": sent})
}

func validatePair(grade models.Grade, subject models.Subject) error {
	if err := validation.ValidateGrade(grade); err != nil {
		return err
	}
	return validation.ValidateSubject(subject)
}
