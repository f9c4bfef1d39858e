package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nameRegex    = regexp.MustCompile(`^[a-zA-Z]+$`)
	specialRegex = regexp.MustCompile(`[.*@!#%&()^~{}]`)
	upperRegex   = regexp.MustCompile(`[A-Z]`)
	lowerRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex   = regexp.MustCompile(`[0-9]`)
)

// ValidateName checks a name-like field: letters only, no spaces. The
// field label appears in the returned message.
func ValidateName(name, field string) error {
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("%s must contain letters with no spaces", field)
	}
	return nil
}

// ValidateEmail checks the minimal shape the clients rely on: one @, a
// dotted domain, and no quotes, commas, or spaces in the local part.
func ValidateEmail(email string) error {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("email must contain exactly one @")
	}
	local, domain := parts[0], parts[1]
	if local == "" {
		return fmt.Errorf("email must have a local part before @")
	}
	for _, c := range []string{`"`, ",", " "} {
		if strings.Contains(local, c) {
			return fmt.Errorf("%s cannot be present before @", c)
		}
	}
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("domain must contain a period")
	}
	return nil
}

// ValidatePassword enforces the password policy: at least 6 characters
// with an uppercase letter, a lowercase letter, a digit, and a special
// character.
func ValidatePassword(password string) error {
	if len(password) == 0 {
		return fmt.Errorf("password cannot be empty")
	}
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if !specialRegex.MatchString(password) {
		return fmt.Errorf("password must contain a special character")
	}
	if !upperRegex.MatchString(password) {
		return fmt.Errorf("password must contain an uppercase character")
	}
	if !lowerRegex.MatchString(password) {
		return fmt.Errorf("password must contain a lowercase character")
	}
	if !digitRegex.MatchString(password) {
		return fmt.Errorf("password must contain a number")
	}
	return nil
}
