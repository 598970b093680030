// Package ledger holds the in-memory progress records of a single learner and
// the rules for updating them when an activity is completed.
package ledger

import (
	"time"

	"kidslearning/internal/models"
)

// Ledger keeps one progress record per grade and subject pair
type Ledger struct {
	records []models.Progress
	now     func() time.Time
}

// New creates a ledger seeded with records. A nil clock means time.Now.
func New(records []models.Progress, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	l := &Ledger{now: now}
	l.Replace(records)
	return l
}

// RecordCompletion marks an activity as completed and returns the updated record.
// A nil score leaves the stored scores untouched.
func (l *Ledger) RecordCompletion(grade models.Grade, subject models.Subject, activityID string, score *float64) models.Progress {
	now := l.now().UTC()

	idx := l.index(grade, subject)
	if idx < 0 {
		record := models.Progress{
			Grade:               grade,
			Subject:             subject,
			CompletedActivities: []string{activityID},
			Scores:              map[string]float64{},
			Achievements:        []string{},
			Streak:              1,
			LastPlayed:          now,
			TotalTimeSpent:      1,
		}
		if score != nil {
			record.Scores[activityID] = *score
		}
		l.records = append(l.records, record)
		return record.Clone()
	}

	record := &l.records[idx]
	if !record.HasCompleted(activityID) {
		record.CompletedActivities = append(record.CompletedActivities, activityID)
	}
	if score != nil {
		if record.Scores == nil {
			record.Scores = map[string]float64{}
		}
		record.Scores[activityID] = *score
	}
	record.TotalTimeSpent++
	record.Streak = NextStreak(record.Streak, record.LastPlayed, now)
	record.LastPlayed = now

	return record.Clone()
}

// AddAchievement tags an achievement on a record. It reports false when the
// record does not exist or already carries the achievement.
func (l *Ledger) AddAchievement(grade models.Grade, subject models.Subject, achievementID string) bool {
	idx := l.index(grade, subject)
	if idx < 0 {
		return false
	}
	record := &l.records[idx]
	if record.HasAchievement(achievementID) {
		return false
	}
	record.Achievements = append(record.Achievements, achievementID)
	return true
}

// Get looks up the record for a grade and subject
func (l *Ledger) Get(grade models.Grade, subject models.Subject) (models.Progress, bool) {
	idx := l.index(grade, subject)
	if idx < 0 {
		return models.Progress{}, false
	}
	return l.records[idx].Clone(), true
}

// Records returns a copy of every record in insertion order
func (l *Ledger) Records() []models.Progress {
	out := make([]models.Progress, len(l.records))
	for i, record := range l.records {
		out[i] = record.Clone()
	}
	return out
}

// Replace swaps the whole record set. Later duplicates of a grade and subject
// pair are dropped so the one-record-per-pair invariant holds.
func (l *Ledger) Replace(records []models.Progress) {
	l.records = make([]models.Progress, 0, len(records))
	for _, record := range records {
		if l.index(record.Grade, record.Subject) >= 0 {
			continue
		}
		l.records = append(l.records, record.Clone())
	}
}

// Reset removes every record
func (l *Ledger) Reset() {
	l.records = []models.Progress{}
}

func (l *Ledger) index(grade models.Grade, subject models.Subject) int {
	for i := range l.records {
		if l.records[i].Grade == grade && l.records[i].Subject == subject {
			return i
		}
	}
	return -1
}
