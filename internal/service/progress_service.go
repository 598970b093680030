package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"kidslearning/internal/achievements"
	"kidslearning/internal/ledger"
	"kidslearning/internal/metrics"
	"kidslearning/internal/models"
	"kidslearning/internal/remote"
	"kidslearning/internal/snapshot"
)

var (
	ErrNoProfile            = errors.New("no profile has been created")
	ErrProfileExists        = errors.New("a profile already exists")
	ErrConfirmationRequired = errors.New("clearing all data requires confirmation")
)

// Mode describes where progress is being kept
type Mode string

const (
	// ModeLocal means no remote backend is configured
	ModeLocal Mode = "local"
	// ModeRemote means completions are mirrored to a linked backend student
	ModeRemote Mode = "remote"
	// ModeDemo means a backend is configured but unlinked or unreachable
	ModeDemo Mode = "demo"
)

// Backend operations, used as metric labels
const (
	opLinkStudent    = "link_student"
	opAppendProgress = "append_progress"
	opListProgress   = "list_progress"
)

// RemoteBackend is the subset of the backend client the engine uses
type RemoteBackend interface {
	Enabled() bool
	CreateStudent(ctx context.Context, req models.NewStudentRequest) (*models.StudentCredentials, error)
	Login(ctx context.Context, name, passcode string) (*models.StudentCredentials, error)
	AppendProgress(ctx context.Context, token, studentID string, entry models.ActivityAppendRequest) (*models.ActivityRecord, error)
	ListProgress(ctx context.Context, token, studentID string) ([]models.ActivityRecord, error)
}

// CompletionResult is the outcome of recording one activity
type CompletionResult struct {
	Progress        models.Progress            `json:"progress"`
	NewAchievements []models.AchievementStatus `json:"newAchievements"`
}

// Status reports the engine's storage mode
type Status struct {
	Mode             Mode   `json:"mode"`
	RemoteConfigured bool   `json:"remoteConfigured"`
	Linked           bool   `json:"linked"`
	StudentID        string `json:"studentId,omitempty"`
	HasProfile       bool   `json:"hasProfile"`
	Records          int    `json:"records"`
	LastSyncError    string `json:"lastSyncError,omitempty"`
}

// LinkResult is returned when a device is linked to a backend student
type LinkResult struct {
	Student  models.Student `json:"student"`
	Passcode string         `json:"passcode,omitempty"`
	Restored int            `json:"restoredActivities"`
}

// ImportedState is a parsed snapshot; only the parts marked as set are replaced
type ImportedState struct {
	ProfileSet  bool
	Profile     *models.UserProfile
	ProgressSet bool
	Progress    []models.Progress
}

// ProgressService owns one learner's progress and profile. Every operation is
// serialized, and every mutation is written through to the snapshot store.
type ProgressService struct {
	mu          sync.Mutex
	store       *snapshot.Store
	ledger      *ledger.Ledger
	profile     *models.UserProfile
	token       string
	catalog     []models.Achievement
	remote      RemoteBackend
	metrics     *metrics.Metrics
	now         func() time.Time
	lastSyncErr error
}

// NewProgressService loads the persisted state from store. remote and m may be nil.
func NewProgressService(store *snapshot.Store, remote RemoteBackend, m *metrics.Metrics, now func() time.Time) (*ProgressService, error) {
	if now == nil {
		now = time.Now
	}

	records, err := store.LoadProgress()
	if err != nil {
		return nil, err
	}
	profile, err := store.LoadProfile()
	if err != nil {
		return nil, err
	}
	token, err := store.LoadBackendToken()
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded %d progress records (profile: %v)", len(records), profile != nil)

	return &ProgressService{
		store:   store,
		ledger:  ledger.New(records, now),
		profile: profile,
		token:   token,
		catalog: achievements.Catalog(),
		remote:  remote,
		metrics: m,
		now:     now,
	}, nil
}

// RecordCompletion marks an activity as done, tags any achievements it
// unlocks and mirrors the completion to the backend when linked. Backend
// failures are logged and do not fail the call.
func (s *ProgressService) RecordCompletion(ctx context.Context, grade models.Grade, subject models.Subject, activityID string, score *float64) (CompletionResult, error) {
	s.mu.Lock()
	s.ledger.RecordCompletion(grade, subject, activityID, score)
	fresh := s.tagNewAchievements(grade, subject)
	progress, _ := s.ledger.Get(grade, subject)
	persistErr := s.store.SaveProgress(s.ledger.Records())
	token, studentID := s.linkedLocked()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.CompletionsRecorded.WithLabelValues(string(subject)).Inc()
	}

	result := CompletionResult{Progress: progress, NewAchievements: fresh}
	if persistErr != nil {
		return result, persistErr
	}

	if token != "" {
		entry := models.ActivityAppendRequest{
			Grade:       grade,
			Subject:     subject,
			ActivityID:  activityID,
			Score:       score,
			CompletedAt: &progress.LastPlayed,
		}
		_, err := s.remote.AppendProgress(ctx, token, studentID, entry)
		s.noteSync(opAppendProgress, err)
	}

	return result, nil
}

// tagNewAchievements records every newly satisfied achievement on the given
// record. The caller holds s.mu.
func (s *ProgressService) tagNewAchievements(grade models.Grade, subject models.Subject) []models.AchievementStatus {
	fresh := []models.AchievementStatus{}
	for _, a := range achievements.NewlyUnlocked(s.catalog, s.ledger.Records()) {
		if !s.ledger.AddAchievement(grade, subject, a.ID) {
			continue
		}
		fresh = append(fresh, achievements.ToStatus(a, true))
		if s.metrics != nil {
			s.metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
		}
		log.Printf("Achievement unlocked: %s (%s %s)", a.ID, grade, subject)
	}
	return fresh
}

// AddAchievement tags an achievement id on a record. It reports whether the
// record changed.
func (s *ProgressService) AddAchievement(grade models.Grade, subject models.Subject, achievementID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.AddAchievement(grade, subject, achievementID) {
		return false, nil
	}
	return true, s.store.SaveProgress(s.ledger.Records())
}

// GetProgress returns the record for a grade and subject
func (s *ProgressService) GetProgress(grade models.Grade, subject models.Subject) (models.Progress, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(grade, subject)
}

// AllProgress returns every record
func (s *ProgressService) AllProgress() []models.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Records()
}

// OverallProgress rolls every record up
func (s *ProgressService) OverallProgress() models.OverallProgress {
	return ledger.Overall(s.AllProgress())
}

// SubjectBreakdown groups progress by subject
func (s *ProgressService) SubjectBreakdown() map[models.Subject]models.SubjectStats {
	return ledger.SubjectBreakdown(s.AllProgress())
}

// Achievements returns the catalog with unlock state
func (s *ProgressService) Achievements() []models.AchievementStatus {
	return achievements.Statuses(s.catalog, s.AllProgress())
}

// Profile returns a copy of the profile, or nil
func (s *ProgressService) Profile() *models.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProfile(s.profile)
}

// CreateProfile creates the learner profile when none exists
func (s *ProgressService) CreateProfile(name string, grade models.Grade, avatar string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile != nil {
		return nil, ErrProfileExists
	}

	profile := &models.UserProfile{
		Name:     strings.TrimSpace(name),
		Grade:    grade,
		Avatar:   avatar,
		JoinDate: s.now().UTC(),
	}
	s.profile = profile
	if err := s.store.SaveProfile(profile); err != nil {
		return copyProfile(profile), err
	}
	return copyProfile(profile), nil
}

// UpdateProfile applies the non-nil fields of update
func (s *ProgressService) UpdateProfile(update models.ProfileUpdate) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return nil, ErrNoProfile
	}
	if update.Name != nil {
		s.profile.Name = strings.TrimSpace(*update.Name)
	}
	if update.Grade != nil {
		s.profile.Grade = *update.Grade
	}
	if update.Avatar != nil {
		s.profile.Avatar = *update.Avatar
	}

	if err := s.store.SaveProfile(s.profile); err != nil {
		return copyProfile(s.profile), err
	}
	return copyProfile(s.profile), nil
}

// ClearAllData deletes the profile, every record and the backend link.
// There is no undo.
func (s *ProgressService) ClearAllData(confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.ledger.Reset()
	s.profile = nil
	s.token = ""
	s.lastSyncErr = nil

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear stored data: %w", err)
	}
	log.Println("All learner data cleared")
	return nil
}

// ReplaceState swaps in imported state. Memory only changes once every
// document in the import has been persisted.
func (s *ProgressService) ReplaceState(state ImportedState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var records []models.Progress
	if state.ProgressSet {
		records = ledger.New(state.Progress, s.now).Records()
		if err := s.store.SaveProgress(records); err != nil {
			return err
		}
	}
	if state.ProfileSet {
		if err := s.store.SaveProfile(state.Profile); err != nil {
			if state.ProgressSet {
				if rollbackErr := s.store.SaveProgress(s.ledger.Records()); rollbackErr != nil {
					log.Printf("Warning: failed to restore progress after a failed import: %v", rollbackErr)
				}
			}
			return err
		}
	}

	if state.ProgressSet {
		s.ledger.Replace(records)
	}
	if state.ProfileSet {
		s.profile = copyProfile(state.Profile)
	}
	return nil
}

// Snapshot returns the exportable state
func (s *ProgressService) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ExportSnapshot(s.profile, s.ledger.Records(), s.now())
}

// Status reports the storage mode
func (s *ProgressService) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, studentID := s.linkedLocked()
	status := Status{
		Mode:             ModeLocal,
		RemoteConfigured: s.remoteEnabled(),
		Linked:           token != "",
		StudentID:        studentID,
		HasProfile:       s.profile != nil,
		Records:          len(s.ledger.Records()),
	}
	if s.lastSyncErr != nil {
		status.LastSyncError = s.lastSyncErr.Error()
	}

	switch {
	case !status.RemoteConfigured:
		status.Mode = ModeLocal
	case status.Linked && s.lastSyncErr == nil:
		status.Mode = ModeRemote
	default:
		status.Mode = ModeDemo
	}
	return status
}

// LinkStudent connects this device to a backend student. An empty passcode
// registers a new student from the profile and returns its passcode; otherwise
// the student logs in and its backend history replaces local progress.
func (s *ProgressService) LinkStudent(ctx context.Context, name, passcode string) (*LinkResult, error) {
	if !s.remoteEnabled() {
		return nil, remote.ErrNotConfigured
	}

	s.mu.Lock()
	profile := copyProfile(s.profile)
	s.mu.Unlock()

	var creds *models.StudentCredentials
	var err error
	if passcode == "" {
		if profile == nil {
			return nil, ErrNoProfile
		}
		creds, err = s.remote.CreateStudent(ctx, models.NewStudentRequest{
			Name:   name,
			Grade:  profile.Grade,
			Avatar: profile.Avatar,
		})
	} else {
		creds, err = s.remote.Login(ctx, name, passcode)
	}
	s.noteSync(opLinkStudent, err)
	if err != nil {
		return nil, err
	}

	result := &LinkResult{Student: creds.Student, Passcode: creds.Passcode}

	var history []models.ActivityRecord
	if passcode != "" {
		history, err = s.remote.ListProgress(ctx, creds.Token, creds.Student.ID)
		s.noteSync(opListProgress, err)
		if err != nil {
			log.Printf("Linked student %s but could not fetch history: %v", creds.Student.ID, err)
			history = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = creds.Token
	if err := s.store.SaveBackendToken(creds.Token); err != nil {
		return nil, err
	}

	if s.profile == nil {
		s.profile = &models.UserProfile{
			Name:     creds.Student.Name,
			Grade:    creds.Student.Grade,
			Avatar:   creds.Student.Avatar,
			JoinDate: creds.Student.CreatedAt,
		}
	}
	s.profile.StudentID = creds.Student.ID
	if err := s.store.SaveProfile(s.profile); err != nil {
		return nil, err
	}

	if len(history) > 0 {
		s.ledger.Replace(ReplayHistory(s.catalog, history))
		if err := s.store.SaveProgress(s.ledger.Records()); err != nil {
			return nil, err
		}
		result.Restored = len(history)
	}

	log.Printf("Device linked to backend student %s", creds.Student.ID)
	return result, nil
}

// ReplayHistory rebuilds progress records from backend completions in order,
// tagging achievements as they would have unlocked
func ReplayHistory(catalog []models.Achievement, history []models.ActivityRecord) []models.Progress {
	var at time.Time
	l := ledger.New(nil, func() time.Time { return at })
	for _, entry := range history {
		at = entry.CompletedAt
		l.RecordCompletion(entry.Grade, entry.Subject, entry.ActivityID, entry.Score)
		for _, a := range achievements.NewlyUnlocked(catalog, l.Records()) {
			l.AddAchievement(entry.Grade, entry.Subject, a.ID)
		}
	}
	return l.Records()
}

func (s *ProgressService) remoteEnabled() bool {
	return s.remote != nil && s.remote.Enabled()
}

// linkedLocked returns the backend token and student id when linked. The
// caller holds s.mu.
func (s *ProgressService) linkedLocked() (string, string) {
	if !s.remoteEnabled() || s.token == "" || s.profile == nil || s.profile.StudentID == "" {
		return "", ""
	}
	return s.token, s.profile.StudentID
}

// noteSync records the outcome of a backend call. A rejected link attempt,
// such as a wrong passcode, does not count as the backend being unavailable.
// A rejected token on any other call unlinks the device so it asks to link
// again.
func (s *ProgressService) noteSync(operation string, err error) {
	if err != nil {
		log.Printf("Remote backend %s failed: %v", operation, err)
		if s.metrics != nil {
			s.metrics.RemoteSyncFailures.WithLabelValues(operation).Inc()
		}
		if operation == opLinkStudent && isRejection(err) {
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSyncErr = err

	if operation != opLinkStudent && isAuthFailure(err) && s.token != "" {
		log.Println("Backend rejected the stored token, device must be linked again")
		s.token = ""
		if err := s.store.SaveBackendToken(""); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
}

func isRejection(err error) bool {
	var apiErr *remote.APIError
	return errors.Is(err, remote.ErrNotFound) || (errors.As(err, &apiErr) && apiErr.StatusCode < 500)
}

func isAuthFailure(err error) bool {
	var apiErr *remote.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

func copyProfile(p *models.UserProfile) *models.UserProfile {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}
