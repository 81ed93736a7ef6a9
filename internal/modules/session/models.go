// Package session manages the authenticated user profile for the device.
//
// A single profile is active at a time. It is persisted to the local
// record store so the session survives restarts, and cleared on logout.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinimumAge is the youngest age allowed to open an account.
const MinimumAge = 15

// ErrNotAuthenticated is returned when an operation requires an active session.
var ErrNotAuthenticated = errors.New("no active session")

// ValidationError describes a rejected profile field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Profile is the user profile for the active session.
type Profile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	AadhaarNumber string `json:"aadhaarNumber,omitempty"`
	PanNumber     string `json:"panNumber,omitempty"`
	Nationality   string `json:"nationality,omitempty"`
	MobileNumber  string `json:"mobileNumber,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Age           int    `json:"age,omitempty"`
}

// Credentials carries a login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupInput carries the fields collected at registration.
type SignupInput struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	AadhaarNumber string `json:"aadhaarNumber"`
	PanNumber     string `json:"panNumber"`
	Nationality   string `json:"nationality"`
	MobileNumber  string `json:"mobileNumber"`
	DateOfBirth   string `json:"dateOfBirth"`
}

// ProfileUpdate carries a partial profile edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name          *string `json:"name,omitempty"`
	AadhaarNumber *string `json:"aadhaarNumber,omitempty"`
	PanNumber     *string `json:"panNumber,omitempty"`
	Nationality   *string `json:"nationality,omitempty"`
	MobileNumber  *string `json:"mobileNumber,omitempty"`
	DateOfBirth   *string `json:"dateOfBirth,omitempty"`
}

// dateOfBirthLayout is the wire format for dates of birth.
const dateOfBirthLayout = "2006-01-02"

// calculateAge returns the whole years elapsed since the date of birth.
func calculateAge(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// validateDateOfBirth parses the date and enforces the minimum age.
func validateDateOfBirth(raw string, now time.Time) (int, error) {
	dob, err := time.Parse(dateOfBirthLayout, strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: "dateOfBirth", Message: "must be in YYYY-MM-DD format"}
	}
	if dob.After(now) {
		return 0, &ValidationError{Field: "dateOfBirth", Message: "cannot be in the future"}
	}

	age := calculateAge(dob, now)
	if age < MinimumAge {
		return 0, &ValidationError{
			Field:   "dateOfBirth",
			Message: fmt.Sprintf("you must be at least %d years old", MinimumAge),
		}
	}
	return age, nil
}

// emailLocalPart returns the part of an email address before the @.
func emailLocalPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
