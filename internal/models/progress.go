package models

import "time"

// Grade is a school grade label such as "3rd" or "5th"
type Grade string

// Subject is a learning subject label
type Subject string

const (
	GradeK   Grade = "K"
	Grade1st Grade = "1st"
	Grade2nd Grade = "2nd"
	Grade3rd Grade = "3rd"
	Grade4th Grade = "4th"
	Grade5th Grade = "5th"
	Grade6th Grade = "6th"
)

const (
	SubjectMath          Subject = "math"
	SubjectReading       Subject = "reading"
	SubjectScience       Subject = "science"
	SubjectSocialStudies Subject = "social-studies"
	SubjectTyping        Subject = "typing"
)

// Grades lists every supported grade in school order
var Grades = []Grade{GradeK, Grade1st, Grade2nd, Grade3rd, Grade4th, Grade5th, Grade6th}

// Subjects lists every supported subject
var Subjects = []Subject{SubjectMath, SubjectReading, SubjectScience, SubjectSocialStudies, SubjectTyping}

// Valid reports whether g is a known grade
func (g Grade) Valid() bool {
	for _, known := range Grades {
		if g == known {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known subject
func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// Progress is the per grade and subject record of a learner's activity
type Progress struct {
	Grade               Grade              `json:"grade"`
	Subject             Subject            `json:"subject"`
	CompletedActivities []string           `json:"completedActivities"`
	Scores              map[string]float64 `json:"scores"`
	Achievements        []string           `json:"achievements"`
	Streak              int                `json:"streak"`
	LastPlayed          time.Time          `json:"lastPlayed"`
	// TotalTimeSpent counts completion events, not minutes
	TotalTimeSpent int `json:"totalTimeSpent"`
}

// HasCompleted reports whether the activity is in the completed set
func (p *Progress) HasCompleted(activityID string) bool {
	for _, id := range p.CompletedActivities {
		if id == activityID {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement id is tagged on this record
func (p *Progress) HasAchievement(achievementID string) bool {
	for _, id := range p.Achievements {
		if id == achievementID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate ledger state
func (p Progress) Clone() Progress {
	out := p
	out.CompletedActivities = append([]string{}, p.CompletedActivities...)
	out.Achievements = append([]string{}, p.Achievements...)
	out.Scores = make(map[string]float64, len(p.Scores))
	for id, score := range p.Scores {
		out.Scores[id] = score
	}
	return out
}

// OverallProgress is the rollup across every progress record
type OverallProgress struct {
	TotalActivities int `json:"totalActivities"`
	AverageScore    int `json:"averageScore"`
	TotalStreak     int `json:"totalStreak"`
	TotalTimeSpent  int `json:"totalTimeSpent"`
}

// SubjectStats is the rollup for one subject across grades
type SubjectStats struct {
	Activities   int `json:"activities"`
	AverageScore int `json:"averageScore"`
	Questions    int `json:"questions"`
}
