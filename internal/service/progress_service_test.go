package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"kidslearning/internal/models"
	"kidslearning/internal/remote"
	"kidslearning/internal/snapshot"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 9, 2, 15, 0, 0, 0, time.UTC)}
}

func score(v float64) *float64 { return &v }

type fakeRemote struct {
	enabled   bool
	appendErr error
	loginErr  error
	history   []models.ActivityRecord
	appended  []models.ActivityAppendRequest
	created   []models.NewStudentRequest
	lastToken string
}

func (f *fakeRemote) Enabled() bool { return f.enabled }

func (f *fakeRemote) CreateStudent(ctx context.Context, req models.NewStudentRequest) (*models.StudentCredentials, error) {
	f.created = append(f.created, req)
	return &models.StudentCredentials{
		Student:  models.Student{ID: "student-1", Name: req.Name, Grade: req.Grade, Avatar: req.Avatar},
		Passcode: "happy-otter-42",
		Token:    "new-token",
	}, nil
}

func (f *fakeRemote) Login(ctx context.Context, name, passcode string) (*models.StudentCredentials, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.StudentCredentials{
		Student: models.Student{ID: "student-1", Name: name, Grade: models.Grade4th},
		Token:   "login-token",
	}, nil
}

func (f *fakeRemote) AppendProgress(ctx context.Context, token, studentID string, entry models.ActivityAppendRequest) (*models.ActivityRecord, error) {
	f.lastToken = token
	if f.appendErr != nil {
		return nil, f.appendErr
	}
	f.appended = append(f.appended, entry)
	return &models.ActivityRecord{ID: "r", StudentID: studentID}, nil
}

func (f *fakeRemote) ListProgress(ctx context.Context, token, studentID string) ([]models.ActivityRecord, error) {
	return f.history, nil
}

type failingKV struct {
	snapshot.KeyValueStore
	failSet bool
	failKey string
}

func (f *failingKV) Set(key, value string) error {
	if f.failSet || (f.failKey != "" && key == f.failKey) {
		return errors.New("disk full")
	}
	return f.KeyValueStore.Set(key, value)
}

func newTestService(t *testing.T, kv snapshot.KeyValueStore, rb RemoteBackend, clock *fakeClock) *ProgressService {
	t.Helper()
	svc, err := NewProgressService(snapshot.NewStore(kv), rb, nil, clock.Now)
	if err != nil {
		t.Fatalf("NewProgressService() error = %v", err)
	}
	return svc
}

func TestRecordCompletionUnlocksAchievements(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), nil, newClock())

	result, err := svc.RecordCompletion(context.Background(), models.Grade5th, models.SubjectMath, "long-division-1", score(100))
	if err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}

	unlocked := make(map[string]bool)
	for _, a := range result.NewAchievements {
		unlocked[a.ID] = true
	}
	for _, id := range []string{"first-steps", "perfect-score", "high-achiever"} {
		if !unlocked[id] {
			t.Errorf("expected %s to unlock, got %v", id, result.NewAchievements)
		}
	}
	if !result.Progress.HasAchievement("first-steps") {
		t.Error("first-steps not tagged on the record")
	}

	again, err := svc.RecordCompletion(context.Background(), models.Grade5th, models.SubjectMath, "long-division-1", score(100))
	if err != nil {
		t.Fatalf("RecordCompletion() second call error = %v", err)
	}
	if len(again.NewAchievements) != 0 {
		t.Errorf("repeat completion unlocked %v, want nothing", again.NewAchievements)
	}
	if len(again.Progress.CompletedActivities) != 1 {
		t.Errorf("CompletedActivities = %v, want a single entry", again.Progress.CompletedActivities)
	}
}

func TestRecordCompletionPersistsAcrossRestart(t *testing.T) {
	kv := snapshot.NewMemoryStore()
	clock := newClock()

	svc := newTestService(t, kv, nil, clock)
	if _, err := svc.RecordCompletion(context.Background(), models.Grade2nd, models.SubjectReading, "sight-words", score(80)); err != nil {
		t.Fatalf("RecordCompletion() error = %v", err)
	}

	reloaded := newTestService(t, kv, nil, clock)
	got, ok := reloaded.GetProgress(models.Grade2nd, models.SubjectReading)
	if !ok {
		t.Fatal("record missing after reload")
	}
	if got.Scores["sight-words"] != 80 {
		t.Errorf("Scores = %v, want sight-words: 80", got.Scores)
	}
}

func TestRecordCompletionPersistError(t *testing.T) {
	kv := &failingKV{KeyValueStore: snapshot.NewMemoryStore(), failSet: true}
	svc := newTestService(t, kv, nil, newClock())

	result, err := svc.RecordCompletion(context.Background(), models.Grade1st, models.SubjectScience, "plants", nil)
	if err == nil {
		t.Fatal("expected persist error")
	}
	if result.Progress.Streak != 1 {
		t.Errorf("Streak = %d, want 1", result.Progress.Streak)
	}
	if _, ok := svc.GetProgress(models.Grade1st, models.SubjectScience); !ok {
		t.Error("in-memory state should keep the mutation")
	}
}

func TestAddAchievement(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), nil, newClock())

	changed, err := svc.AddAchievement(models.Grade3rd, models.SubjectTyping, "custom-badge")
	if err != nil || !changed {
		t.Fatalf("AddAchievement() = %v, %v; want true, nil", changed, err)
	}
	changed, err = svc.AddAchievement(models.Grade3rd, models.SubjectTyping, "custom-badge")
	if err != nil || changed {
		t.Errorf("AddAchievement() repeat = %v, %v; want false, nil", changed, err)
	}
}

func TestEmptyStateQueries(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), nil, newClock())

	if overall := svc.OverallProgress(); overall != (models.OverallProgress{}) {
		t.Errorf("OverallProgress() = %+v, want zero", overall)
	}
	if got := svc.SubjectBreakdown(); len(got) != 0 {
		t.Errorf("SubjectBreakdown() = %v, want empty", got)
	}
	for _, a := range svc.Achievements() {
		if a.Unlocked {
			t.Errorf("achievement %s unlocked on empty state", a.ID)
		}
	}
	if svc.Profile() != nil {
		t.Error("Profile() should be nil on empty state")
	}
}

func TestProfileLifecycle(t *testing.T) {
	svc := newTestService(t, snapshot.NewMemoryStore(), nil, newClock())

	if _, err := svc.UpdateProfile(models.ProfileUpdate{}); !errors.Is(err, ErrNoProfile) {
		t.Errorf("UpdateProfile() without profile error = %v, want ErrNoProfile", err)
	}

	profile, err := svc.CreateProfile("  Ada ", models.Grade3rd, "🦊")
	if err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if profile.Name != "Ada" {
		t.Errorf("Name = %q, want Ada", profile.Name)
	}
	if _, err := svc.CreateProfile("Bo", models.GradeK, ""); !errors.Is(err, ErrProfileExists) {
		t.Errorf("second CreateProfile() error = %v, want ErrProfileExists", err)
	}

	grade := models.Grade4th
	updated, err := svc.UpdateProfile(models.ProfileUpdate{Grade: &grade})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if updated.Grade != models.Grade4th || updated.Name != "Ada" {
		t.Errorf("UpdateProfile() = %+v, want grade 4th and name kept", updated)
	}

	updated.Name = "mutated"
	if svc.Profile().Name != "Ada" {
		t.Error("Profile() returned shared state")
	}
}

func TestClearAllDataRequiresConfirmation(t *testing.T) {
	kv := snapshot.NewMemoryStore()
	svc := newTestService(t, kv, nil, newClock())
	svc.CreateProfile("Ada", models.Grade3rd, "")
	svc.RecordCompletion(context.Background(), models.Grade3rd, models.SubjectMath, "a", score(50))

	if err := svc.ClearAllData(false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("ClearAllData(false) error = %v, want ErrConfirmationRequired", err)
	}
	if len(svc.AllProgress()) != 1 {
		t.Fatal("unconfirmed clear removed data")
	}

	if err := svc.ClearAllData(true); err != nil {
		t.Fatalf("ClearAllData(true) error = %v", err)
	}
	if len(svc.AllProgress()) != 0 || svc.Profile() != nil {
		t.Error("data remains after confirmed clear")
	}
	if _, found, _ := kv.Get(snapshot.ProgressKey); found {
		t.Error("progress key still stored after clear")
	}
}

func TestStatusModes(t *testing.T) {
	t.Run("local without backend", func(t *testing.T) {
		svc := newTestService(t, snapshot.NewMemoryStore(), nil, newClock())
		if got := svc.Status().Mode; got != ModeLocal {
			t.Errorf("Mode = %s, want local", got)
		}
	})

	t.Run("demo when configured but unlinked", func(t *testing.T) {
		svc := newTestService(t, snapshot.NewMemoryStore(), &fakeRemote{enabled: true}, newClock())
		if got := svc.Status().Mode; got != ModeDemo {
			t.Errorf("Mode = %s, want demo", got)
		}
	})

	t.Run("remote once linked", func(t *testing.T) {
		rb := &fakeRemote{enabled: true}
		svc := newTestService(t, snapshot.NewMemoryStore(), rb, newClock())
		svc.CreateProfile("Ada", models.Grade3rd, "")
		if _, err := svc.LinkStudent(context.Background(), "Ada", ""); err != nil {
			t.Fatalf("LinkStudent() error = %v", err)
		}
		status := svc.Status()
		if status.Mode != ModeRemote || !status.Linked || status.StudentID != "student-1" {
			t.Errorf("Status() = %+v, want linked remote student-1", status)
		}
	})
}

func TestRemoteFailureDegradesToDemo(t *testing.T) {
	rb := &fakeRemote{enabled: true}
	svc := newTestService(t, snapshot.NewMemoryStore(), rb, newClock())
	svc.CreateProfile("Ada", models.Grade3rd, "")
	if _, err := svc.LinkStudent(context.Background(), "Ada", ""); err != nil {
		t.Fatalf("LinkStudent() error = %v", err)
	}

	rb.appendErr = errors.New("connection refused")
	result, err := svc.RecordCompletion(context.Background(), models.Grade3rd, models.SubjectMath, "a", score(70))
	if err != nil {
		t.Fatalf("RecordCompletion() should absorb backend failures, got %v", err)
	}
	if result.Progress.Scores["a"] != 70 {
		t.Errorf("local record not updated: %+v", result.Progress)
	}
	if rb.lastToken != "new-token" {
		t.Errorf("append used token %q, want new-token", rb.lastToken)
	}

	status := svc.Status()
	if status.Mode != ModeDemo || status.LastSyncError == "" {
		t.Errorf("Status() = %+v, want demo with a sync error", status)
	}

	rb.appendErr = nil
	svc.RecordCompletion(context.Background(), models.Grade3rd, models.SubjectMath, "b", nil)
	if got := svc.Status().Mode; got != ModeRemote {
		t.Errorf("Mode after recovery = %s, want remote", got)
	}
}

func TestRejectedTokenUnlinksDevice(t *testing.T) {
	kv := snapshot.NewMemoryStore()
	rb := &fakeRemote{enabled: true}
	svc := newTestService(t, kv, rb, newClock())
	svc.CreateProfile("Ada", models.Grade3rd, "")
	if _, err := svc.LinkStudent(context.Background(), "Ada", ""); err != nil {
		t.Fatalf("LinkStudent() error = %v", err)
	}

	rb.appendErr = &remote.APIError{StatusCode: 401, Message: "invalid or expired token"}
	if _, err := svc.RecordCompletion(context.Background(), models.Grade3rd, models.SubjectMath, "a", score(80)); err != nil {
		t.Fatalf("RecordCompletion() should absorb backend failures, got %v", err)
	}

	status := svc.Status()
	if status.Mode != ModeDemo || status.Linked || status.LastSyncError == "" {
		t.Errorf("Status() = %+v, want unlinked demo with a sync error", status)
	}

	rb.lastToken = ""
	svc.RecordCompletion(context.Background(), models.Grade3rd, models.SubjectMath, "b", nil)
	if rb.lastToken != "" {
		t.Errorf("append attempted with token %q after the token was rejected", rb.lastToken)
	}

	restarted := newTestService(t, kv, rb, newClock())
	if restarted.Status().Linked {
		t.Error("rejected token should not survive a restart")
	}

	rb.appendErr = nil
	if _, err := svc.LinkStudent(context.Background(), "Ada", "happy-otter-42"); err != nil {
		t.Fatalf("LinkStudent() relink error = %v", err)
	}
	if status := svc.Status(); status.Mode != ModeRemote || status.LastSyncError != "" {
		t.Errorf("Status() after relink = %+v, want remote", status)
	}
}

func TestReplaceStateFailureKeepsState(t *testing.T) {
	t.Run("progress save fails", func(t *testing.T) {
		kv := &failingKV{KeyValueStore: snapshot.NewMemoryStore()}
		svc := newTestService(t, kv, nil, newClock())
		svc.RecordCompletion(context.Background(), models.Grade2nd, models.SubjectMath, "a", score(90))

		kv.failSet = true
		if err := svc.ReplaceState(ImportedState{ProgressSet: true, Progress: []models.Progress{}}); err == nil {
			t.Fatal("ReplaceState() should report the persist error")
		}
		if got := len(svc.AllProgress()); got != 1 {
			t.Errorf("len(AllProgress()) = %d, want 1", got)
		}
	})

	t.Run("profile save fails after progress", func(t *testing.T) {
		kv := &failingKV{KeyValueStore: snapshot.NewMemoryStore()}
		svc := newTestService(t, kv, nil, newClock())
		svc.CreateProfile("Ada", models.Grade2nd, "")
		svc.RecordCompletion(context.Background(), models.Grade2nd, models.SubjectMath, "a", score(90))

		kv.failKey = snapshot.ProfileKey
		err := svc.ReplaceState(ImportedState{
			ProgressSet: true,
			Progress:    []models.Progress{},
			ProfileSet:  true,
			Profile:     &models.UserProfile{Name: "Bo", Grade: models.Grade1st},
		})
		if err == nil {
			t.Fatal("ReplaceState() should report the persist error")
		}
		if got := len(svc.AllProgress()); got != 1 {
			t.Errorf("len(AllProgress()) = %d, want 1", got)
		}
		if profile := svc.Profile(); profile == nil || profile.Name != "Ada" {
			t.Errorf("Profile() = %+v, want Ada", profile)
		}

		kv.failKey = ""
		restarted := newTestService(t, kv, nil, newClock())
		if got := len(restarted.AllProgress()); got != 1 {
			t.Errorf("stored records = %d, want 1", got)
		}
	})
}

func TestLinkStudentLoginReplaysHistory(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	rb := &fakeRemote{
		enabled: true,
		history: []models.ActivityRecord{
			{Grade: models.Grade4th, Subject: models.SubjectMath, ActivityID: "a", Score: score(100), CompletedAt: base},
			{Grade: models.Grade4th, Subject: models.SubjectMath, ActivityID: "b", Score: score(60), CompletedAt: base.Add(24 * time.Hour)},
		},
	}
	svc := newTestService(t, snapshot.NewMemoryStore(), rb, newClock())

	result, err := svc.LinkStudent(context.Background(), "Ada", "happy-otter-42")
	if err != nil {
		t.Fatalf("LinkStudent() error = %v", err)
	}
	if result.Restored != 2 || result.Passcode != "" {
		t.Errorf("LinkStudent() = %+v, want 2 restored and no passcode", result)
	}

	got, ok := svc.GetProgress(models.Grade4th, models.SubjectMath)
	if !ok {
		t.Fatal("replayed record missing")
	}
	if got.Streak != 2 || len(got.CompletedActivities) != 2 {
		t.Errorf("replayed record = %+v, want streak 2 with 2 activities", got)
	}
	if !got.HasAchievement("perfect-score") {
		t.Error("perfect-score should be tagged during replay")
	}
	if profile := svc.Profile(); profile == nil || profile.StudentID != "student-1" {
		t.Errorf("Profile() = %+v, want a profile linked to student-1", profile)
	}
}

func TestLinkStudentErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := newTestService(t, snapshot.NewMemoryStore(), nil, newClock())
		if _, err := svc.LinkStudent(context.Background(), "Ada", "x"); !errors.Is(err, remote.ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("register without profile", func(t *testing.T) {
		svc := newTestService(t, snapshot.NewMemoryStore(), &fakeRemote{enabled: true}, newClock())
		if _, err := svc.LinkStudent(context.Background(), "Ada", ""); !errors.Is(err, ErrNoProfile) {
			t.Errorf("error = %v, want ErrNoProfile", err)
		}
	})

	t.Run("wrong passcode keeps mode", func(t *testing.T) {
		rb := &fakeRemote{enabled: true, loginErr: &remote.APIError{StatusCode: 401, Message: "invalid name or passcode"}}
		svc := newTestService(t, snapshot.NewMemoryStore(), rb, newClock())
		if _, err := svc.LinkStudent(context.Background(), "Ada", "wrong"); err == nil {
			t.Fatal("expected login error")
		}
		if status := svc.Status(); status.LastSyncError != "" {
			t.Errorf("LastSyncError = %q, want empty for a rejected passcode", status.LastSyncError)
		}
	})
}

func TestReplayHistoryEmpty(t *testing.T) {
	if got := ReplayHistory(nil, nil); len(got) != 0 {
		t.Errorf("ReplayHistory(nil) = %v, want empty", got)
	}
}
