package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kidslearning/internal/database"
	"kidslearning/internal/models"
)

// StudentRepository handles database operations for backend students
type StudentRepository struct {
	db database.DBTX
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db database.DBTX) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateStudent inserts a student with a fresh UUID
func (r *StudentRepository) CreateStudent(name string, grade models.Grade, avatar, passcodeHash string) (*models.Student, error) {
	student := &models.Student{
		ID:           uuid.NewString(),
		Name:         name,
		Grade:        grade,
		Avatar:       avatar,
		CreatedAt:    time.Now().UTC(),
		PasscodeHash: passcodeHash,
	}

	query := "INSERT INTO students (id, name, grade, avatar, passcode_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query, student.ID, student.Name, string(student.Grade), student.Avatar, student.PasscodeHash, student.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return student, nil
}

// GetStudentByID retrieves a student by ID, or nil if none exists
func (r *StudentRepository) GetStudentByID(id string) (*models.Student, error) {
	query := "SELECT id, name, grade, avatar, passcode_hash, created_at FROM students WHERE id = ?"
	return r.scanStudent(r.db.QueryRow(query, id))
}

// GetStudentByName retrieves a student by case-insensitive name, or nil if none exists
func (r *StudentRepository) GetStudentByName(name string) (*models.Student, error) {
	query := "SELECT id, name, grade, avatar, passcode_hash, created_at FROM students WHERE LOWER(name) = LOWER(?)"
	return r.scanStudent(r.db.QueryRow(query, name))
}

func (r *StudentRepository) scanStudent(row *sql.Row) (*models.Student, error) {
	student := &models.Student{}
	var grade string
	err := row.Scan(
		&student.ID,
		&student.Name,
		&grade,
		&student.Avatar,
		&student.PasscodeHash,
		&student.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	student.Grade = models.Grade(grade)
	return student, nil
}
