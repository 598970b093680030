package models

import "time"

// Student is a learner registered with the progress backend
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Grade     Grade     `json:"grade"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`

	PasscodeHash string `json:"-"`
}

// ActivityRecord is one append-only completion stored by the progress backend
type ActivityRecord struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	Grade       Grade     `json:"grade"`
	Subject     Subject   `json:"subject"`
	ActivityID  string    `json:"activityId"`
	Score       *float64  `json:"score,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}

// NewStudentRequest registers a student with the progress backend
type NewStudentRequest struct {
	Name   string `json:"name"`
	Grade  Grade  `json:"grade"`
	Avatar string `json:"avatar"`
}

// StudentLoginRequest exchanges a name and passcode for a token
type StudentLoginRequest struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

// StudentCredentials is returned on registration and login. Passcode is only
// set on registration.
type StudentCredentials struct {
	Student  Student `json:"student"`
	Passcode string  `json:"passcode,omitempty"`
	Token    string  `json:"token"`
}

// ActivityAppendRequest is the body of a progress append
type ActivityAppendRequest struct {
	Grade       Grade      `json:"grade"`
	Subject     Subject    `json:"subject"`
	ActivityID  string     `json:"activityId"`
	Score       *float64   `json:"score,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}
