package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kidslearning/internal/remote"
	"kidslearning/internal/service"
	"kidslearning/internal/tutor"
	"kidslearning/internal/validation"
)

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not a JSON error: %q", recorder.Body.String())
	}
	return body.Error
}

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", got)
	}
	if got := decodeError(t, recorder); got != "Teapot" {
		t.Fatalf("expected error 'Teapot', got %q", got)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "validation", err: validation.ValidationError{Field: "grade", Message: "grade is required"}, wantStatus: http.StatusBadRequest},
		{name: "malformed import", err: &service.MalformedImportError{Reason: "bad"}, wantStatus: http.StatusBadRequest},
		{name: "confirmation", err: service.ErrConfirmationRequired, wantStatus: http.StatusBadRequest},
		{name: "no profile", err: service.ErrNoProfile, wantStatus: http.StatusNotFound},
		{name: "profile exists", err: service.ErrProfileExists, wantStatus: http.StatusConflict},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", service.ErrStudentNotFound), wantStatus: http.StatusNotFound},
		{name: "bad credentials", err: service.ErrInvalidCredentials, wantStatus: http.StatusUnauthorized},
		{name: "tutor disabled", err: tutor.ErrDisabled, wantStatus: http.StatusServiceUnavailable},
		{name: "tutor upstream", err: fmt.Errorf("%w: quota", tutor.ErrUpstream), wantStatus: http.StatusBadGateway},
		{name: "backend rejection", err: &remote.APIError{StatusCode: 401, Message: "nope"}, wantStatus: http.StatusUnauthorized},
		{name: "backend failure", err: &remote.APIError{StatusCode: 503, Message: "down"}, wantStatus: http.StatusBadGateway},
		{name: "unknown", err: errors.New("disk on fire"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondWithServiceError(recorder, "test", tt.err)

			if recorder.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", recorder.Code, tt.wantStatus)
			}
			if decodeError(t, recorder) == "" {
				t.Error("error message is empty")
			}
		})
	}
}
