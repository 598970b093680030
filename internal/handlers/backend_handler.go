package handlers

import (
	"net/http"

	"kidslearning/internal/models"
	"kidslearning/internal/service"
	"kidslearning/internal/validation"
)

// BackendHandler serves the remote progress backend API
type BackendHandler struct {
	students *service.StudentService
}

// NewBackendHandler creates a new backend handler
func NewBackendHandler(students *service.StudentService) *BackendHandler {
	return &BackendHandler{students: students}
}

// CreateStudent registers a student and returns its one-time passcode
func (h *BackendHandler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var req models.NewStudentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	creds, err := h.students.CreateStudent(req)
	if err != nil {
		respondWithServiceError(w, "Failed to create student", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, creds)
}

// FindStudent looks a student up by the name query parameter
func (h *BackendHandler) FindStudent(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if err := validation.ValidateName(name); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	student, err := h.students.FindByName(name)
	if err != nil {
		respondWithServiceError(w, "Failed to find student", err)
		return
	}
	respondWithJSON(w, http.StatusOK, student)
}

// Login exchanges a name and passcode for a token
func (h *BackendHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.StudentLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidatePasscode(req.Passcode); err != nil {
		respondWithServiceError(w, "", err)
		return
	}

	creds, err := h.students.Login(req.Name, req.Passcode)
	if err != nil {
		respondWithServiceError(w, "Failed to log in student", err)
		return
	}
	respondWithJSON(w, http.StatusOK, creds)
}

// AppendProgress stores one completion for the authenticated student
func (h *BackendHandler) AppendProgress(w http.ResponseWriter, r *http.Request) {
	var req models.ActivityAppendRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := h.students.AppendProgress(GetStudentIDFromContext(r.Context()), req)
	if err != nil {
		respondWithServiceError(w, "Failed to append progress", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, record)
}

// ListProgress returns the authenticated student's completions
func (h *BackendHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	records, err := h.students.ListProgress(GetStudentIDFromContext(r.Context()))
	if err != nil {
		respondWithServiceError(w, "Failed to list progress", err)
		return
	}
	respondWithJSON(w, http.StatusOK, records)
}
