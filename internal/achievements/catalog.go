// Package achievements defines the achievement catalog and decides which
// entries a set of progress records has unlocked.
package achievements

import "kidslearning/internal/models"

// PerfectScore is the score value counted by perfect_scores requirements
const PerfectScore = 100

// Catalog returns the built-in achievements in display order
func Catalog() []models.Achievement {
	return []models.Achievement{
		{
			ID:          "first-steps",
			Name:        "First Steps",
			Description: "Complete your first activity",
			Icon:        "👣",
			Requirement: models.ActivityRequirement{Threshold: 1},
		},
		{
			ID:          "perfect-score",
			Name:        "Perfect Score",
			Description: "Get 100% on any activity",
			Icon:        "⭐",
			Requirement: models.PerfectScoresRequirement{Threshold: 1},
		},
		{
			ID:          "high-achiever",
			Name:        "High Achiever",
			Description: "Score 90% or higher on an activity",
			Icon:        "🏅",
			Requirement: models.ScoreRequirement{Threshold: 90},
		},
		{
			ID:          "streak-3",
			Name:        "On Fire",
			Description: "Build a 3 day learning streak",
			Icon:        "🔥",
			Requirement: models.StreakRequirement{Threshold: 3},
		},
		{
			ID:          "streak-7",
			Name:        "Week Warrior",
			Description: "Build a 7 day learning streak",
			Icon:        "🗓️",
			Requirement: models.StreakRequirement{Threshold: 7},
		},
		{
			ID:          "math-whiz",
			Name:        "Math Whiz",
			Description: "Complete 10 math activities",
			Icon:        "🧮",
			Requirement: models.ActivityRequirement{Threshold: 10, Subject: models.SubjectMath},
		},
		{
			ID:          "bookworm",
			Name:        "Bookworm",
			Description: "Complete 10 reading activities",
			Icon:        "📚",
			Requirement: models.ActivityRequirement{Threshold: 10, Subject: models.SubjectReading},
		},
		{
			ID:          "scientist",
			Name:        "Young Scientist",
			Description: "Complete 10 science activities",
			Icon:        "🔬",
			Requirement: models.ActivityRequirement{Threshold: 10, Subject: models.SubjectScience},
		},
		{
			ID:          "explorer",
			Name:        "World Explorer",
			Description: "Complete 10 social studies activities",
			Icon:        "🌍",
			Requirement: models.ActivityRequirement{Threshold: 10, Subject: models.SubjectSocialStudies},
		},
		{
			ID:          "typing-ace",
			Name:        "Typing Ace",
			Description: "Score 95% or higher on a typing activity",
			Icon:        "⌨️",
			Requirement: models.ScoreRequirement{Threshold: 95, Subject: models.SubjectTyping},
		},
		{
			ID:          "perfectionist",
			Name:        "Perfectionist",
			Description: "Get 5 perfect scores",
			Icon:        "💎",
			Requirement: models.PerfectScoresRequirement{Threshold: 5},
		},
		{
			ID:          "dedicated-learner",
			Name:        "Dedicated Learner",
			Description: "Complete 50 activities",
			Icon:        "🎓",
			Requirement: models.ActivityRequirement{Threshold: 50},
		},
	}
}

// Find returns the catalog entry with the given id
func Find(catalog []models.Achievement, id string) (models.Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return models.Achievement{}, false
}
