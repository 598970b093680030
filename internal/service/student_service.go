package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kidslearning/internal/credentials"
	"kidslearning/internal/models"
	"kidslearning/internal/repository"
	"kidslearning/internal/security"
	"kidslearning/internal/validation"
)

var (
	ErrStudentNotFound    = errors.New("student not found")
	ErrStudentExists      = errors.New("a student with that name already exists")
	ErrInvalidCredentials = errors.New("invalid name or passcode")
	ErrBlockedName        = errors.New("that name is not allowed")
	ErrForbidden          = errors.New("token does not belong to this student")
)

// BlockedWordChecker finds disallowed words in free text
type BlockedWordChecker interface {
	BlockedWordsIn(text string) ([]string, error)
}

// StudentService is the server side of the remote progress backend
type StudentService struct {
	studentRepo  *repository.StudentRepository
	activityRepo *repository.ActivityRepository
	tokens       *security.TokenIssuer
	blocked      BlockedWordChecker
	now          func() time.Time
}

// NewStudentService creates a new student service. blocked may be nil.
func NewStudentService(studentRepo *repository.StudentRepository, activityRepo *repository.ActivityRepository, tokens *security.TokenIssuer, blocked BlockedWordChecker) *StudentService {
	return &StudentService{
		studentRepo:  studentRepo,
		activityRepo: activityRepo,
		tokens:       tokens,
		blocked:      blocked,
		now:          time.Now,
	}
}

// CreateStudent registers a student and returns its generated passcode and a token
func (s *StudentService) CreateStudent(req models.NewStudentRequest) (*models.StudentCredentials, error) {
	name := strings.TrimSpace(req.Name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrade(req.Grade); err != nil {
		return nil, err
	}
	if err := validation.ValidateAvatar(req.Avatar); err != nil {
		return nil, err
	}

	if s.blocked != nil {
		words, err := s.blocked.BlockedWordsIn(name)
		if err != nil {
			return nil, fmt.Errorf("failed to check name: %w", err)
		}
		if len(words) > 0 {
			log.Printf("Rejected student name containing blocked words: %v", words)
			return nil, ErrBlockedName
		}
	}

	existing, err := s.studentRepo.GetStudentByName(name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrStudentExists
	}

	passcode, err := credentials.GeneratePasscode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate passcode: %w", err)
	}
	hash, err := security.HashPassword(passcode)
	if err != nil {
		return nil, fmt.Errorf("failed to hash passcode: %w", err)
	}

	student, err := s.studentRepo.CreateStudent(name, req.Grade, req.Avatar, hash)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	log.Printf("Student registered: %s (%s)", student.ID, student.Grade)
	return &models.StudentCredentials{Student: *student, Passcode: passcode, Token: token}, nil
}

// FindByName looks a student up by case-insensitive name
func (s *StudentService) FindByName(name string) (*models.Student, error) {
	student, err := s.studentRepo.GetStudentByName(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrStudentNotFound
	}
	return student, nil
}

// Login checks a name and passcode and issues a token
func (s *StudentService) Login(name, passcode string) (*models.StudentCredentials, error) {
	student, err := s.studentRepo.GetStudentByName(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if student == nil || !security.CheckPassword(student.PasscodeHash, strings.TrimSpace(passcode)) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(student.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.StudentCredentials{Student: *student, Token: token}, nil
}

// ValidateToken returns the student id a token was issued for
func (s *StudentService) ValidateToken(token string) (string, error) {
	return s.tokens.Parse(token)
}

// AppendProgress stores one completion for a student
func (s *StudentService) AppendProgress(studentID string, req models.ActivityAppendRequest) (*models.ActivityRecord, error) {
	if err := validation.ValidateGrade(req.Grade); err != nil {
		return nil, err
	}
	if err := validation.ValidateSubject(req.Subject); err != nil {
		return nil, err
	}
	if err := validation.ValidateIdentifier("activityId", req.ActivityID); err != nil {
		return nil, err
	}

	if err := s.requireStudent(studentID); err != nil {
		return nil, err
	}

	completedAt := s.now()
	if req.CompletedAt != nil && !req.CompletedAt.IsZero() {
		completedAt = *req.CompletedAt
	}

	return s.activityRepo.AppendActivity(studentID, req.Grade, req.Subject, req.ActivityID, req.Score, completedAt)
}

// ListProgress returns a student's completions ordered by time
func (s *StudentService) ListProgress(studentID string) ([]models.ActivityRecord, error) {
	if err := s.requireStudent(studentID); err != nil {
		return nil, err
	}
	return s.activityRepo.ListStudentActivities(studentID)
}

func (s *StudentService) requireStudent(studentID string) error {
	student, err := s.studentRepo.GetStudentByID(studentID)
	if err != nil {
		return err
	}
	if student == nil {
		return ErrStudentNotFound
	}
	return nil
}
