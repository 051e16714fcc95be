package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// SignupInput is the raw registration payload before validation.
type SignupInput struct {
	Name            string
	Email           string
	Sex             string
	Department      string
	Password        string
	ConfirmPassword string
	// Image is the raw bytes of an optional profile image; nil means none.
	Image []byte
}

// LoginInput is the raw login payload before validation.
type LoginInput struct {
	Email    string
	Password string
}

func isValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func isAllowedCompanyEmail(email, domain string) bool {
	if email == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(email), "@"+domain)
}

// validateSignup normalizes and validates registration input. The first
// failing check wins; every failure is a BadRequest.
func validateSignup(in SignupInput, domain string) (SignupInput, error) {
	out := SignupInput{
		Name:            strings.TrimSpace(in.Name),
		Email:           normalizeEmail(in.Email),
		Sex:             strings.ToLower(strings.TrimSpace(in.Sex)),
		Department:      strings.TrimSpace(in.Department),
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		Image:           in.Image,
	}

	if out.Name == "" || out.Email == "" || out.Sex == "" || out.Department == "" ||
		out.Password == "" || out.ConfirmPassword == "" {
		return out, badRequest("All fields are required")
	}
	if !isValidEmail(out.Email) {
		return out, badRequest("Invalid email")
	}
	if !isAllowedCompanyEmail(out.Email, domain) {
		return out, badRequest(fmt.Sprintf("Only @%s emails are allowed", domain))
	}
	if !isInList(out.Sex, SexOptions) {
		return out, badRequest("Invalid sex value")
	}
	if !isInList(out.Department, Departments) {
		return out, badRequest("Invalid department value")
	}
	if len(out.Password) < 6 {
		return out, badRequest("Password must be at least 6 characters")
	}
	if out.Password != out.ConfirmPassword {
		return out, badRequest("Passwords do not match")
	}
	return out, nil
}

// validateLogin normalizes and validates login input. The domain gate
// applies to login as well so foreign addresses fail fast without a lookup.
func validateLogin(in LoginInput, domain string) (LoginInput, error) {
	out := LoginInput{
		Email:    normalizeEmail(in.Email),
		Password: in.Password,
	}
	if out.Email == "" || out.Password == "" {
		return out, badRequest("Email and password are required")
	}
	if !isValidEmail(out.Email) {
		return out, badRequest("Invalid email")
	}
	if !isAllowedCompanyEmail(out.Email, domain) {
		return out, badRequest(fmt.Sprintf("Only @%s emails are allowed", domain))
	}
	return out, nil
}
