package ledger

import (
	"math"

	"kidslearning/internal/models"
)

// Overall rolls every record up into a single summary
func Overall(records []models.Progress) models.OverallProgress {
	var overall models.OverallProgress
	var scoreSum float64

	for _, record := range records {
		overall.TotalActivities += len(record.CompletedActivities)
		overall.TotalStreak += record.Streak
		overall.TotalTimeSpent += record.TotalTimeSpent
		for _, score := range record.Scores {
			scoreSum += score
		}
	}

	overall.AverageScore = averageOf(scoreSum, overall.TotalActivities)
	return overall
}

// SubjectBreakdown groups records by subject, ignoring grade
func SubjectBreakdown(records []models.Progress) map[models.Subject]models.SubjectStats {
	type totals struct {
		activities int
		questions  int
		scoreSum   float64
	}

	grouped := make(map[models.Subject]*totals)
	for _, record := range records {
		t, ok := grouped[record.Subject]
		if !ok {
			t = &totals{}
			grouped[record.Subject] = t
		}
		t.activities += len(record.CompletedActivities)
		t.questions += len(record.Scores)
		for _, score := range record.Scores {
			t.scoreSum += score
		}
	}

	breakdown := make(map[models.Subject]models.SubjectStats, len(grouped))
	for subject, t := range grouped {
		breakdown[subject] = models.SubjectStats{
			Activities:   t.activities,
			AverageScore: averageOf(t.scoreSum, t.activities),
			Questions:    t.questions,
		}
	}
	return breakdown
}

// averageOf returns sum/count rounded to the nearest integer, or 0 for no items.
// Scores are stored unclamped, so the result saturates at the int range.
func averageOf(sum float64, count int) int {
	if count == 0 {
		return 0
	}
	avg := math.Round(sum / float64(count))
	switch {
	case math.IsNaN(avg):
		return 0
	case avg >= float64(math.MaxInt):
		return math.MaxInt
	case avg <= float64(math.MinInt):
		return math.MinInt
	}
	return int(avg)
}
