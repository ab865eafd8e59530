package models

import (
	"strings"
	"time"
	"unicode/utf8"

	dErrors "registrar/pkg/domain-errors"
)

// CreateStudentRequest is the payload for student creation. Optional fields
// left blank collapse to absent during normalization.
type CreateStudentRequest struct {
	StudentID   string `json:"student_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Address     string `json:"address"`

	// Parsed values (populated by Validate)
	parsedDateOfBirth *time.Time
}

// Normalize trims every string field and lower-cases the email. It is
// idempotent; normalizing an already normalized request changes nothing.
func (r *CreateStudentRequest) Normalize() {
	if r == nil {
		return
	}
	r.StudentID = strings.TrimSpace(r.StudentID)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.Address = strings.TrimSpace(r.Address)
}

// Follows validation order: Required -> Format -> Size -> Semantic.
// now anchors the age check so callers control the reference date.
func (r *CreateStudentRequest) Validate(now time.Time) error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}

	if r.StudentID == "" {
		return dErrors.New(dErrors.CodeValidation, "Student ID is required")
	}
	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "First name is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "Last name is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "Email is required")
	}

	if n := utf8.RuneCountInString(r.StudentID); n < 3 || n > 20 {
		return dErrors.New(dErrors.CodeValidation, "Student ID must be between 3-20 characters")
	}
	if !strings.Contains(r.Email, "@") || !strings.Contains(r.Email, ".") {
		return dErrors.New(dErrors.CodeValidation, "Invalid email format")
	}

	if utf8.RuneCountInString(r.FirstName) > 50 {
		return dErrors.New(dErrors.CodeValidation, "First name must be at most 50 characters")
	}
	if utf8.RuneCountInString(r.LastName) > 50 {
		return dErrors.New(dErrors.CodeValidation, "Last name must be at most 50 characters")
	}
	if utf8.RuneCountInString(r.Email) > 100 {
		return dErrors.New(dErrors.CodeValidation, "Email must be at most 100 characters")
	}
	if utf8.RuneCountInString(r.Phone) > 20 {
		return dErrors.New(dErrors.CodeValidation, "Phone number must be at most 20 characters")
	}
	if utf8.RuneCountInString(r.Address) > 200 {
		return dErrors.New(dErrors.CodeValidation, "Address must be at most 200 characters")
	}

	if r.DateOfBirth != "" {
		dob, err := ParseDate(r.DateOfBirth)
		if err != nil {
			return err
		}
		r.parsedDateOfBirth = &dob
	}
	if err := ValidateAge(r.parsedDateOfBirth, now); err != nil {
		return err
	}
	if err := ValidatePhone(r.Phone); err != nil {
		return err
	}

	return nil
}

// ParsedDateOfBirth returns the date of birth parsed by Validate, or nil when
// the field was absent.
func (r *CreateStudentRequest) ParsedDateOfBirth() *time.Time {
	return r.parsedDateOfBirth
}
