package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"kidslearning/internal/models"
)

// MaxImportSize bounds the size of an uploaded snapshot
const MaxImportSize = 10 << 20

// MalformedImportError reports a snapshot that cannot be imported. State is
// left untouched when it is returned.
type MalformedImportError struct {
	Reason string
	Err    error
}

func (e *MalformedImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed import: %s: %v", e.Reason, e.Err)
	}
	return "malformed import: " + e.Reason
}

func (e *MalformedImportError) Unwrap() error {
	return e.Err
}

// BackupService moves the learner state to and from JSON snapshot files
type BackupService struct {
	progress *ProgressService
}

func NewBackupService(progress *ProgressService) *BackupService {
	return &BackupService{progress: progress}
}

// ExportSnapshot assembles an export document
func ExportSnapshot(profile *models.UserProfile, records []models.Progress, now time.Time) models.Snapshot {
	if records == nil {
		records = []models.Progress{}
	}
	return models.Snapshot{
		Profile:    copyProfile(profile),
		Progress:   records,
		ExportDate: now.UTC(),
	}
}

// ExportFilename names a download for the given day
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("kids-learning-progress-%s.json", t.Format("2006-01-02"))
}

// ExportToWriter writes the current state as indented JSON
func (s *BackupService) ExportToWriter(w io.Writer) error {
	snap := s.progress.Snapshot()

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Export writes the current state to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting progress export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Progress exported successfully to %s", outputPath)
	return nil
}

// Import restores state from a snapshot file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting progress import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores state from an uploaded snapshot. Only the
// top-level keys present in the document are replaced.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(reader, MaxImportSize+1))
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(data) > MaxImportSize {
		return &MalformedImportError{Reason: "file is too large"}
	}

	state, err := ParseSnapshot(data)
	if err != nil {
		return err
	}

	if err := s.progress.ReplaceState(state); err != nil {
		return fmt.Errorf("failed to persist imported state: %w", err)
	}

	log.Printf("Progress import completed (profile: %v, records: %d)", state.ProfileSet, len(state.Progress))
	return nil
}

// ParseSnapshot validates the shape of an export document
func ParseSnapshot(data []byte) (ImportedState, error) {
	var state ImportedState

	if !json.Valid(data) {
		return state, &MalformedImportError{Reason: "file is not valid JSON"}
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return state, &MalformedImportError{Reason: "top level must be an object"}
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return state, &MalformedImportError{Reason: "top level must be an object", Err: err}
	}

	rawProfile, hasProfile := doc["profile"]
	rawProgress, hasProgress := doc["progress"]
	if !hasProfile && !hasProgress {
		return state, &MalformedImportError{Reason: "neither profile nor progress is present"}
	}

	if hasProgress {
		records, err := parseProgress(rawProgress)
		if err != nil {
			return state, err
		}
		state.ProgressSet = true
		state.Progress = records
	}

	if hasProfile {
		profile, err := parseProfile(rawProfile)
		if err != nil {
			return state, err
		}
		state.ProfileSet = true
		state.Profile = profile
	}

	return state, nil
}

func parseProgress(raw json.RawMessage) ([]models.Progress, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, &MalformedImportError{Reason: "progress must be an array"}
	}

	var records []models.Progress
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &MalformedImportError{Reason: "progress records are invalid", Err: err}
	}

	out := make([]models.Progress, 0, len(records))
	for i, record := range records {
		if record.Grade == "" || record.Subject == "" {
			return nil, &MalformedImportError{Reason: fmt.Sprintf("progress[%d] is missing grade or subject", i)}
		}
		out = append(out, record.Clone())
	}
	return out, nil
}

func parseProfile(raw json.RawMessage) (*models.UserProfile, error) {
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if len(raw) == 0 || raw[0] != '{' {
		return nil, &MalformedImportError{Reason: "profile must be an object or null"}
	}

	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, &MalformedImportError{Reason: "profile is invalid", Err: err}
	}
	return &profile, nil
}
