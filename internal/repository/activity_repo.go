package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kidslearning/internal/database"
	"kidslearning/internal/models"
)

// ActivityRepository stores append-only completion records
type ActivityRepository struct {
	db database.DBTX
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db database.DBTX) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// AppendActivity records a completion for a student
func (r *ActivityRepository) AppendActivity(studentID string, grade models.Grade, subject models.Subject, activityID string, score *float64, completedAt time.Time) (*models.ActivityRecord, error) {
	record := &models.ActivityRecord{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		Grade:       grade,
		Subject:     subject,
		ActivityID:  activityID,
		Score:       score,
		CompletedAt: completedAt.UTC(),
	}

	var scoreValue sql.NullFloat64
	if score != nil {
		scoreValue = sql.NullFloat64{Float64: *score, Valid: true}
	}

	query := `
		INSERT INTO activity_progress (id, student_id, grade, subject, activity_id, score, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, record.ID, record.StudentID, string(record.Grade), string(record.Subject),
		record.ActivityID, scoreValue, record.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append activity: %w", err)
	}

	return record, nil
}

// ListStudentActivities returns a student's records ordered by completion time
func (r *ActivityRepository) ListStudentActivities(studentID string) ([]models.ActivityRecord, error) {
	query := `
		SELECT id, student_id, grade, subject, activity_id, score, completed_at
		FROM activity_progress
		WHERE student_id = ?
		ORDER BY completed_at ASC, id ASC
	`
	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer rows.Close()

	records := []models.ActivityRecord{}
	for rows.Next() {
		var record models.ActivityRecord
		var grade, subject string
		var score sql.NullFloat64
		if err := rows.Scan(
			&record.ID,
			&record.StudentID,
			&grade,
			&subject,
			&record.ActivityID,
			&score,
			&record.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		record.Grade = models.Grade(grade)
		record.Subject = models.Subject(subject)
		if score.Valid {
			value := score.Float64
			record.Score = &value
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return records, nil
}
