package identity

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError carries every rule a password broke, in rule order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// PasswordPolicy measures MinLength in runes and MaxBytes in bytes. A zero
// MaxBytes disables the upper bound.
type PasswordPolicy struct {
	MinLength        int
	MaxBytes         int
	RequireDigit     bool
	RequireLowercase bool
	RequireUppercase bool
	RequireSymbol    bool
}

func DefaultPasswordPolicy(minLength int) PasswordPolicy {
	return PasswordPolicy{
		MinLength:        minLength,
		MaxBytes:         maxPasswordBytes,
		RequireDigit:     true,
		RequireLowercase: true,
		RequireUppercase: true,
		RequireSymbol:    true,
	}
}

// Validate returns nil or a *ValidationError.
func (p PasswordPolicy) Validate(password string) error {
	var hasDigit, hasLower, hasUpper, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	var msgs []string
	if len([]rune(password)) < p.MinLength {
		msgs = append(msgs, fmt.Sprintf("Passwords must be at least %d characters.", p.MinLength))
	}
	if p.MaxBytes > 0 && len(password) > p.MaxBytes {
		msgs = append(msgs, fmt.Sprintf("Passwords must be at most %d bytes.", p.MaxBytes))
	}
	if p.RequireSymbol && !hasSymbol {
		msgs = append(msgs, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		msgs = append(msgs, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		msgs = append(msgs, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		msgs = append(msgs, "Passwords must have at least one uppercase ('A'-'Z').")
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
