package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kidslearning/internal/service"
)

// SnapshotHandler exports and imports the learner state as JSON files
type SnapshotHandler struct {
	backup *service.BackupService
	now    func() time.Time
}

// NewSnapshotHandler creates a new snapshot handler
func NewSnapshotHandler(backup *service.BackupService) *SnapshotHandler {
	return &SnapshotHandler{backup: backup, now: time.Now}
}

// Export downloads the state as kids-learning-progress-<date>.json
func (h *SnapshotHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.backup.ExportToWriter(&buf); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to export progress", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, service.ExportFilename(h.now())))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Import replaces state from an uploaded export, either as the raw body or
// as a multipart "file" field
func (h *SnapshotHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxImportSize+1<<10)

	var reader io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			if isBodyTooLarge(err) {
				respondWithServiceError(w, "Failed to import progress", uploadTooLarge(err))
				return
			}
			respondWithError(w, http.StatusBadRequest, "Missing upload field \"file\"", "", nil)
			return
		}
		defer file.Close()
		reader = file
	}

	if err := h.backup.ImportFromReader(reader); err != nil {
		if isBodyTooLarge(err) {
			err = uploadTooLarge(err)
		}
		respondWithServiceError(w, "Failed to import progress", err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"imported": true})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func uploadTooLarge(err error) error {
	return &service.MalformedImportError{Reason: "file is too large", Err: err}
}
