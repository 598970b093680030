package achievements

import "kidslearning/internal/models"

// Evaluate reports, for every catalog entry, whether the records satisfy its requirement
func Evaluate(catalog []models.Achievement, records []models.Progress) map[string]bool {
	unlocked := make(map[string]bool, len(catalog))
	for _, a := range catalog {
		unlocked[a.ID] = Satisfied(a.Requirement, records)
	}
	return unlocked
}

// Satisfied checks a single requirement against the records
func Satisfied(req models.Requirement, records []models.Progress) bool {
	switch r := req.(type) {
	case models.ScoreRequirement:
		for _, record := range records {
			if !matchesSubject(r.Subject, record.Subject) {
				continue
			}
			for _, score := range record.Scores {
				if score >= r.Threshold {
					return true
				}
			}
		}
		return false

	case models.StreakRequirement:
		for _, record := range records {
			if record.Streak >= r.Threshold {
				return true
			}
		}
		return false

	case models.ActivityRequirement:
		count := 0
		for _, record := range records {
			if matchesSubject(r.Subject, record.Subject) {
				count += len(record.CompletedActivities)
			}
		}
		return count >= r.Threshold

	case models.PerfectScoresRequirement:
		count := 0
		for _, record := range records {
			for _, score := range record.Scores {
				if score == PerfectScore {
					count++
				}
			}
		}
		return count >= r.Threshold
	}
	return false
}

// Statuses returns the catalog in order with each entry's unlock state
func Statuses(catalog []models.Achievement, records []models.Progress) []models.AchievementStatus {
	unlocked := Evaluate(catalog, records)
	statuses := make([]models.AchievementStatus, 0, len(catalog))
	for _, a := range catalog {
		statuses = append(statuses, ToStatus(a, unlocked[a.ID]))
	}
	return statuses
}

// ToStatus converts a catalog entry to its wire form
func ToStatus(a models.Achievement, unlocked bool) models.AchievementStatus {
	return models.AchievementStatus{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Icon:        a.Icon,
		Requirement: models.DescribeRequirement(a.Requirement),
		Unlocked:    unlocked,
	}
}

// NewlyUnlocked returns unlocked achievements that no record carries yet
func NewlyUnlocked(catalog []models.Achievement, records []models.Progress) []models.Achievement {
	tagged := make(map[string]bool)
	for _, record := range records {
		for _, id := range record.Achievements {
			tagged[id] = true
		}
	}

	var fresh []models.Achievement
	for _, a := range catalog {
		if tagged[a.ID] {
			continue
		}
		if Satisfied(a.Requirement, records) {
			fresh = append(fresh, a)
		}
	}
	return fresh
}

func matchesSubject(want, got models.Subject) bool {
	return want == "" || want == got
}
