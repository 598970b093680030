package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"kidslearning/internal/remote"
	"kidslearning/internal/security"
	"kidslearning/internal/service"
	"kidslearning/internal/tutor"
	"kidslearning/internal/validation"
)

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"` + ErrInternalServerError + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s: %v", logMsg, err)
	}

	respondWithJSON(w, status, errorResponse{Error: userMsg})
}

// respondWithServiceError maps domain errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500.
func respondWithServiceError(w http.ResponseWriter, logMsg string, err error) {
	var validationErr validation.ValidationError
	var malformed *service.MalformedImportError
	var apiErr *remote.APIError

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error(), "", nil)
	case errors.As(err, &malformed):
		respondWithError(w, http.StatusBadRequest, malformed.Error(), "", nil)
	case errors.Is(err, service.ErrConfirmationRequired),
		errors.Is(err, service.ErrBlockedName),
		errors.Is(err, tutor.ErrInvalidConversation):
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
	case errors.Is(err, service.ErrNoProfile),
		errors.Is(err, service.ErrStudentNotFound),
		errors.Is(err, remote.ErrNotFound):
		respondWithError(w, http.StatusNotFound, err.Error(), "", nil)
	case errors.Is(err, service.ErrProfileExists),
		errors.Is(err, service.ErrStudentExists):
		respondWithError(w, http.StatusConflict, err.Error(), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, security.ErrInvalidToken):
		respondWithError(w, http.StatusUnauthorized, err.Error(), "", nil)
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error(), "", nil)
	case errors.Is(err, remote.ErrNotConfigured),
		errors.Is(err, tutor.ErrDisabled):
		respondWithError(w, http.StatusServiceUnavailable, err.Error(), "", nil)
	case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
		respondWithError(w, apiErr.StatusCode, apiErr.Message, "", nil)
	case errors.As(err, &apiErr), errors.Is(err, tutor.ErrUpstream):
		respondWithError(w, http.StatusBadGateway, ErrUpstreamUnavailable, logMsg, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, logMsg, err)
	}
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return false
	}
	return true
}
