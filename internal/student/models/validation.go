package models

import (
	"time"

	dErrors "registrar/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// ParseDate parses a calendar date in strict YYYY-MM-DD form. Month and day
// ranges are checked, including leap years. Blank input is the caller's case
// to handle; this function treats it as any other malformed value.
func ParseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "Invalid date format. Use YYYY-MM-DD format")
	}
	return t, nil
}

// ValidateAge checks that dob yields an age between 16 and 100 whole years
// at now, both bounds inclusive. A nil dob passes; the field is optional.
func ValidateAge(dob *time.Time, now time.Time) error {
	if dob == nil {
		return nil
	}
	if dob.After(now) {
		return dErrors.New(dErrors.CodeValidation, "Date of birth cannot be in the future")
	}

	// Whole years: decrement when the birthday has not yet occurred this year.
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}

	if age < 16 {
		return dErrors.New(dErrors.CodeValidation, "Student must be at least 16 years old")
	}
	if age > 100 {
		return dErrors.New(dErrors.CodeValidation, "Invalid date of birth")
	}
	return nil
}

// ValidatePhone checks the character set and digit count of a phone number.
// Blank input passes; the field is optional. Punctuation is not normalized,
// the trimmed value is stored as given.
func ValidatePhone(raw string) error {
	if raw == "" {
		return nil
	}

	digits := 0
	for _, c := range raw {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == ' ' || c == '-' || c == '(' || c == ')' || c == '+':
		default:
			return dErrors.New(dErrors.CodeValidation, "Phone number contains invalid characters")
		}
	}
	if digits < 10 || digits > 15 {
		return dErrors.New(dErrors.CodeValidation, "Phone number must have between 10-15 digits")
	}
	return nil
}
