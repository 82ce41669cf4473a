package domain

import (
	"regexp"
	"strings"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// IsValidEmail reports whether email looks like a deliverable address.
func IsValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// NormalizeEmail trims and lower-cases an address for use as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailDomain returns the lower-cased part after the last '@', or "" when
// there is none.
func EmailDomain(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 || i == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[i+1:]))
}

// RedactEmail masks an email address for safe logging.
// "john.doe@example.com" becomes "jo***@example.com"; short local parts are
// fully masked.
func RedactEmail(email string) string {
	i := strings.LastIndex(email, "@")
	if i < 0 {
		return "***@***"
	}
	name := email[:i]
	if len(name) > 2 {
		return name[:2] + "***@" + email[i+1:]
	}
	return "***@" + email[i+1:]
}
