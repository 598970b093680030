package validation

import (
	"errors"
	"strings"
	"testing"

	"kidslearning/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "parent@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "parentexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "parent@",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "parent @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid name", input: "Ada", wantErr: false},
		{name: "name with hyphen", input: "Mary-Jane", wantErr: false},
		{name: "two letter emoji-free name", input: "Bo", wantErr: false},
		{name: "empty name", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "name too short", input: "J", wantErr: true},
		{name: "name too long", input: strings.Repeat("a", 51), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGradeAndSubject(t *testing.T) {
	if err := ValidateGrade(models.Grade5th); err != nil {
		t.Errorf("ValidateGrade(5th) error = %v", err)
	}
	if err := ValidateGrade("7th"); err == nil {
		t.Error("ValidateGrade(7th) should fail")
	}
	if err := ValidateGrade(""); err == nil {
		t.Error("ValidateGrade(\"\") should fail")
	}
	if err := ValidateSubject(models.SubjectSocialStudies); err != nil {
		t.Errorf("ValidateSubject(social-studies) error = %v", err)
	}
	if err := ValidateSubject("art"); err == nil {
		t.Error("ValidateSubject(art) should fail")
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{name: "valid", id: "long-division-1", wantErr: false},
		{name: "empty", id: "", wantErr: true},
		{name: "whitespace", id: "long division", wantErr: true},
		{name: "too long", id: strings.Repeat("x", 129), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier("activityId", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorField(t *testing.T) {
	err := ValidateIdentifier("activityId", "")

	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error %v is not a ValidationError", err)
	}
	if ve.Field != "activityId" {
		t.Errorf("Field = %q, want activityId", ve.Field)
	}
}

func TestValidateAvatarAndPasscode(t *testing.T) {
	if err := ValidateAvatar(""); err != nil {
		t.Errorf("ValidateAvatar(\"\") error = %v", err)
	}
	if err := ValidateAvatar(strings.Repeat("🦊", 33)); err == nil {
		t.Error("ValidateAvatar() should reject long avatars")
	}
	if err := ValidatePasscode(" "); err == nil {
		t.Error("ValidatePasscode() should reject blank passcodes")
	}
}
