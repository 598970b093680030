package handlers

import (
	"net/http"
	"strings"

	"kidslearning/internal/models"
	"kidslearning/internal/service"
	"kidslearning/internal/validation"
)

// ProfileHandler manages the learner profile and its backend link
type ProfileHandler struct {
	progress *service.ProgressService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(progress *service.ProgressService) *ProfileHandler {
	return &ProfileHandler{progress: progress}
}

type createProfileRequest struct {
	Name   string       `json:"name"`
	Grade  models.Grade `json:"grade"`
	Avatar string       `json:"avatar"`
}

type linkRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

type clearRequest struct {
	Confirm bool `json:"confirm"`
}

// GetProfile returns the profile, or 404 before one is created
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile := h.progress.Profile()
	if profile == nil {
		respondWithServiceError(w, "", service.ErrNoProfile)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// CreateProfile creates the profile on first use
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateProfileFields(&req.Name, &req.Grade, &req.Avatar); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	profile, err := h.progress.CreateProfile(req.Name, req.Grade, req.Avatar)
	if err != nil {
		respondWithServiceError(w, "Failed to create profile", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, profile)
}

// UpdateProfile applies a partial edit
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validateProfileFields(req.Name, req.Grade, req.Avatar); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	profile, err := h.progress.UpdateProfile(req)
	if err != nil {
		respondWithServiceError(w, "Failed to update profile", err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// Link connects the device to a backend student. Without a passcode a new
// student is registered and its passcode is returned once.
func (h *ProfileHandler) Link(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		if profile := h.progress.Profile(); profile != nil {
			name = profile.Name
		}
	}
	if err := validation.ValidateName(name); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	result, err := h.progress.LinkStudent(r.Context(), name, strings.TrimSpace(req.Passcode))
	if err != nil {
		respondWithServiceError(w, "Failed to link student", err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// ClearData deletes every piece of learner data once confirmed
func (h *ProfileHandler) ClearData(w http.ResponseWriter, r *http.Request) {
	var req clearRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.progress.ClearAllData(req.Confirm); err != nil {
		respondWithServiceError(w, "Failed to clear data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateProfileFields(name *string, grade *models.Grade, avatar *string) error {
	if name != nil {
		if err := validation.ValidateName(*name); err != nil {
			return err
		}
	}
	if grade != nil {
		if err := validation.ValidateGrade(*grade); err != nil {
			return err
		}
	}
	if avatar != nil {
		if err := validation.ValidateAvatar(*avatar); err != nil {
			return err
		}
	}
	return nil
}
