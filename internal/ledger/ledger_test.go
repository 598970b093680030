package ledger

import (
	"reflect"
	"testing"
	"time"

	"kidslearning/internal/models"
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

func TestRecordCompletionNewRecordDefaults(t *testing.T) {
	clock := newClock()
	l := New(nil, clock.Now)

	got := l.RecordCompletion(models.Grade3rd, models.SubjectReading, "phonics-1", score(75))

	if got.Streak != 1 {
		t.Errorf("Streak = %d, want 1", got.Streak)
	}
	if len(got.CompletedActivities) != 1 || got.CompletedActivities[0] != "phonics-1" {
		t.Errorf("CompletedActivities = %v, want [phonics-1]", got.CompletedActivities)
	}
	if got.TotalTimeSpent != 1 {
		t.Errorf("TotalTimeSpent = %d, want 1", got.TotalTimeSpent)
	}
	if got.Scores["phonics-1"] != 75 {
		t.Errorf("Scores[phonics-1] = %v, want 75", got.Scores["phonics-1"])
	}
	if got.Achievements == nil || len(got.Achievements) != 0 {
		t.Errorf("Achievements = %v, want empty set", got.Achievements)
	}
	if !got.LastPlayed.Equal(clock.now) {
		t.Errorf("LastPlayed = %v, want %v", got.LastPlayed, clock.now)
	}
}

func TestRecordCompletionWithoutScore(t *testing.T) {
	l := New(nil, newClock().Now)

	got := l.RecordCompletion(models.Grade2nd, models.SubjectScience, "plants", nil)

	if len(got.Scores) != 0 {
		t.Errorf("Scores = %v, want empty", got.Scores)
	}
	if !got.HasCompleted("plants") {
		t.Error("activity should be marked completed even without a score")
	}
}

func TestRecordCompletionIsIdempotentForActivity(t *testing.T) {
	l := New(nil, newClock().Now)

	l.RecordCompletion(models.Grade4th, models.SubjectMath, "fractions-1", score(60))
	got := l.RecordCompletion(models.Grade4th, models.SubjectMath, "fractions-1", score(95))

	if len(got.CompletedActivities) != 1 {
		t.Errorf("CompletedActivities = %v, want exactly one entry", got.CompletedActivities)
	}
	if got.Scores["fractions-1"] != 95 {
		t.Errorf("Scores[fractions-1] = %v, want latest score 95", got.Scores["fractions-1"])
	}
	if got.TotalTimeSpent != 2 {
		t.Errorf("TotalTimeSpent = %d, want 2", got.TotalTimeSpent)
	}
}

func TestRecordCompletionStoresOutOfRangeScores(t *testing.T) {
	l := New(nil, newClock().Now)

	got := l.RecordCompletion(models.Grade1st, models.SubjectTyping, "home-row", score(140))

	if got.Scores["home-row"] != 140 {
		t.Errorf("Scores[home-row] = %v, want 140 stored as given", got.Scores["home-row"])
	}
}

func TestRecordCompletionStreak(t *testing.T) {
	tests := []struct {
		name       string
		gap        time.Duration
		wantStreak int
	}{
		{name: "same sitting", gap: 5 * time.Minute, wantStreak: 2},
		{name: "next day", gap: 30 * time.Hour, wantStreak: 2},
		{name: "just under two days", gap: 47 * time.Hour, wantStreak: 2},
		{name: "two days later", gap: 48 * time.Hour, wantStreak: 1},
		{name: "a week later", gap: 7 * 24 * time.Hour, wantStreak: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newClock()
			l := New(nil, clock.Now)
			l.RecordCompletion(models.Grade5th, models.SubjectMath, "a", nil)

			clock.Advance(tt.gap)
			got := l.RecordCompletion(models.Grade5th, models.SubjectMath, "b", nil)

			if got.Streak != tt.wantStreak {
				t.Errorf("Streak = %d, want %d", got.Streak, tt.wantStreak)
			}
			if !got.LastPlayed.Equal(clock.now) {
				t.Errorf("LastPlayed = %v, want %v", got.LastPlayed, clock.now)
			}
		})
	}
}

func TestRecordCompletionStreakResetsRegardlessOfPriorValue(t *testing.T) {
	clock := newClock()
	l := New([]models.Progress{{
		Grade:               models.Grade5th,
		Subject:             models.SubjectMath,
		CompletedActivities: []string{"x"},
		Scores:              map[string]float64{},
		Achievements:        []string{},
		Streak:              42,
		LastPlayed:          clock.now.Add(-72 * time.Hour),
		TotalTimeSpent:      42,
	}}, clock.Now)

	got := l.RecordCompletion(models.Grade5th, models.SubjectMath, "y", nil)

	if got.Streak != 1 {
		t.Errorf("Streak = %d, want reset to 1", got.Streak)
	}
}

func TestRecordCompletionLongDivisionScenario(t *testing.T) {
	l := New(nil, newClock().Now)

	l.RecordCompletion(models.Grade5th, models.SubjectMath, "long-division-1", score(90))
	got := l.RecordCompletion(models.Grade5th, models.SubjectMath, "long-division-2", score(100))

	wantActivities := []string{"long-division-1", "long-division-2"}
	if !reflect.DeepEqual(got.CompletedActivities, wantActivities) {
		t.Errorf("CompletedActivities = %v, want %v", got.CompletedActivities, wantActivities)
	}
	wantScores := map[string]float64{"long-division-1": 90, "long-division-2": 100}
	if !reflect.DeepEqual(got.Scores, wantScores) {
		t.Errorf("Scores = %v, want %v", got.Scores, wantScores)
	}
	if got.Streak != 2 {
		t.Errorf("Streak = %d, want 2", got.Streak)
	}
}

func TestRecordsAreKeyedByGradeAndSubject(t *testing.T) {
	l := New(nil, newClock().Now)

	l.RecordCompletion(models.Grade3rd, models.SubjectMath, "a", nil)
	l.RecordCompletion(models.Grade5th, models.SubjectMath, "a", nil)
	l.RecordCompletion(models.Grade3rd, models.SubjectReading, "a", nil)
	l.RecordCompletion(models.Grade3rd, models.SubjectMath, "b", nil)

	if got := len(l.Records()); got != 3 {
		t.Fatalf("len(Records()) = %d, want 3", got)
	}
	record, ok := l.Get(models.Grade3rd, models.SubjectMath)
	if !ok {
		t.Fatal("Get(3rd, math) not found")
	}
	if len(record.CompletedActivities) != 2 {
		t.Errorf("CompletedActivities = %v, want 2 entries", record.CompletedActivities)
	}
}

func TestAddAchievement(t *testing.T) {
	l := New(nil, newClock().Now)
	l.RecordCompletion(models.Grade2nd, models.SubjectReading, "a", nil)

	if !l.AddAchievement(models.Grade2nd, models.SubjectReading, "first-steps") {
		t.Error("AddAchievement() = false on first add, want true")
	}
	if l.AddAchievement(models.Grade2nd, models.SubjectReading, "first-steps") {
		t.Error("AddAchievement() = true on duplicate add, want false")
	}
	if l.AddAchievement(models.Grade6th, models.SubjectReading, "first-steps") {
		t.Error("AddAchievement() = true for missing record, want false")
	}

	record, _ := l.Get(models.Grade2nd, models.SubjectReading)
	if !reflect.DeepEqual(record.Achievements, []string{"first-steps"}) {
		t.Errorf("Achievements = %v, want [first-steps]", record.Achievements)
	}
}

func TestRecordsReturnsCopies(t *testing.T) {
	l := New(nil, newClock().Now)
	l.RecordCompletion(models.Grade3rd, models.SubjectMath, "a", score(50))

	records := l.Records()
	records[0].Scores["a"] = 0
	records[0].CompletedActivities[0] = "changed"

	record, _ := l.Get(models.Grade3rd, models.SubjectMath)
	if record.Scores["a"] != 50 || record.CompletedActivities[0] != "a" {
		t.Error("mutating Records() output changed ledger state")
	}
}

func TestReplaceDropsDuplicatePairs(t *testing.T) {
	l := New(nil, newClock().Now)
	l.Replace([]models.Progress{
		{Grade: models.Grade3rd, Subject: models.SubjectMath, Streak: 4},
		{Grade: models.Grade3rd, Subject: models.SubjectMath, Streak: 9},
	})

	records := l.Records()
	if len(records) != 1 {
		t.Fatalf("len(Records()) = %d, want 1", len(records))
	}
	if records[0].Streak != 4 {
		t.Errorf("Streak = %d, want first record kept", records[0].Streak)
	}

	l.Reset()
	if len(l.Records()) != 0 {
		t.Error("Reset() left records behind")
	}
}
