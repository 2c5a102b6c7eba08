// Package validation holds input checks shared by the HTML and JSON surfaces.
package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	UsernameMinLength = 5
	UsernameMaxLength = 9
)

var validate = validator.New()

// ValidateUsername checks presence and the 5..9 character length rule.
func ValidateUsername(username string) error {
	if err := validate.Var(username, "required"); err != nil {
		return fmt.Errorf("username is required")
	}
	rule := fmt.Sprintf("min=%d,max=%d", UsernameMinLength, UsernameMaxLength)
	if err := validate.Var(username, rule); err != nil {
		return fmt.Errorf("username must be between %d and %d characters", UsernameMinLength, UsernameMaxLength)
	}
	return nil
}

// ValidatePassword only requires a password; strength rules are not enforced.
func ValidatePassword(password string) error {
	if err := validate.Var(password, "required"); err != nil {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateLongURL rejects an empty submission. Well-formedness is left to the shortening provider.
func ValidateLongURL(longURL string) error {
	if err := validate.Var(strings.TrimSpace(longURL), "required"); err != nil {
		return fmt.Errorf("a URL to shorten is required")
	}
	return nil
}
