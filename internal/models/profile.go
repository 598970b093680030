package models

import "time"

// UserProfile is the single learner profile stored on a device
type UserProfile struct {
	Name     string    `json:"name"`
	Grade    Grade     `json:"grade"`
	Avatar   string    `json:"avatar"`
	JoinDate time.Time `json:"joinDate"`
	// StudentID links the profile to a remote backend student
	StudentID string `json:"studentId,omitempty"`
}

// ProfileUpdate carries the optional fields of an edit-profile action
type ProfileUpdate struct {
	Name   *string `json:"name,omitempty"`
	Grade  *Grade  `json:"grade,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}
