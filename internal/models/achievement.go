package models

// RequirementKind names the kind of condition an achievement checks
type RequirementKind string

const (
	RequirementScore         RequirementKind = "score"
	RequirementStreak        RequirementKind = "streak"
	RequirementActivities    RequirementKind = "activities"
	RequirementPerfectScores RequirementKind = "perfect_scores"
)

// Requirement is the unlock condition of an achievement.
// It is implemented only by the requirement types in this package.
type Requirement interface {
	Kind() RequirementKind
	isRequirement()
}

// ScoreRequirement is met by any single stored score at or above Threshold.
// An empty Subject matches every subject.
type ScoreRequirement struct {
	Threshold float64
	Subject   Subject
}

// StreakRequirement is met when any record's streak reaches Threshold
type StreakRequirement struct {
	Threshold int
}

// ActivityRequirement is met when the completed-activity count reaches Threshold.
// An empty Subject counts every subject.
type ActivityRequirement struct {
	Threshold int
	Subject   Subject
}

// PerfectScoresRequirement is met when the number of 100% scores reaches Threshold
type PerfectScoresRequirement struct {
	Threshold int
}

func (ScoreRequirement) Kind() RequirementKind         { return RequirementScore }
func (StreakRequirement) Kind() RequirementKind        { return RequirementStreak }
func (ActivityRequirement) Kind() RequirementKind      { return RequirementActivities }
func (PerfectScoresRequirement) Kind() RequirementKind { return RequirementPerfectScores }

func (ScoreRequirement) isRequirement()         {}
func (StreakRequirement) isRequirement()        {}
func (ActivityRequirement) isRequirement()      {}
func (PerfectScoresRequirement) isRequirement() {}

// Achievement is a static catalog entry; only its ID is ever persisted
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Requirement Requirement
}

// RequirementInfo is the wire form of a requirement
type RequirementInfo struct {
	Type      RequirementKind `json:"type"`
	Threshold float64         `json:"threshold"`
	Subject   Subject         `json:"subject,omitempty"`
}

// DescribeRequirement flattens a requirement for JSON output
func DescribeRequirement(r Requirement) RequirementInfo {
	switch req := r.(type) {
	case ScoreRequirement:
		return RequirementInfo{Type: req.Kind(), Threshold: req.Threshold, Subject: req.Subject}
	case StreakRequirement:
		return RequirementInfo{Type: req.Kind(), Threshold: float64(req.Threshold)}
	case ActivityRequirement:
		return RequirementInfo{Type: req.Kind(), Threshold: float64(req.Threshold), Subject: req.Subject}
	case PerfectScoresRequirement:
		return RequirementInfo{Type: req.Kind(), Threshold: float64(req.Threshold)}
	}
	return RequirementInfo{}
}

// AchievementStatus is a catalog entry with its unlock state
type AchievementStatus struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Icon        string          `json:"icon"`
	Requirement RequirementInfo `json:"requirement"`
	Unlocked    bool            `json:"unlocked"`
}
