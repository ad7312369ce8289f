package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// passwordPolicy bundles the credential rules shared by startup validation
// and the runtime auth providers.
type passwordPolicy struct {
	minLength     int
	weakPasswords []string
}

// defaultPolicy is used for startup validation of operator credentials.
// Runtime providers receive their policy from the security config.
var defaultPolicy = passwordPolicy{
	minLength: 12,
	weakPasswords: []string{
		"admin", "admin1", "admin123",
		"password", "password1", "password123",
		"123456", "12345678", "123456789", "1234567890",
		"qwerty", "abc123", "letmein", "welcome", "monkey",
		"test", "test123", "default", "root", "secret",
	},
}

// vet rejects passwords that are too short, follow trivial patterns, or
// match (or are short variations of) the weak-password list.
func (p passwordPolicy) vet(pass string) error {
	if len(pass) < p.minLength {
		return fmt.Errorf("must be at least %d characters (current length: %d)", p.minLength, len(pass))
	}
	if isNumericRun(pass) {
		return errors.New("must not be a simple numeric pattern")
	}
	if hasKeyboardRun(pass) {
		return errors.New("must not be a keyboard pattern")
	}
	lower := strings.ToLower(pass)
	for _, weak := range p.weakPasswords {
		if lower == weak {
			return errors.New("must not be a weak password")
		}
		// Short variations like "admin1234567890" are still guessable.
		if strings.HasPrefix(lower, weak) && len(pass) < p.minLength+5 {
			return errors.New("must not be based on common weak passwords")
		}
	}
	return nil
}

// precheck applies the cheap credential checks providers run before
// touching the configured accounts.
func (p passwordPolicy) precheck(username, password string) error {
	if username == "" || password == "" {
		return errors.New("credentials must not be empty")
	}
	if len(password) < p.minLength {
		return fmt.Errorf("password must be at least %d characters", p.minLength)
	}
	lower := strings.ToLower(password)
	for _, weak := range p.weakPasswords {
		if strings.HasPrefix(lower, strings.ToLower(weak)) {
			return errors.New("weak password detected")
		}
	}
	return nil
}

// ValidateAdminCredentials checks ADMIN_USER / ADMIN_USER_PASSWORD at
// startup. The server must refuse to boot on empty or weak admin
// credentials, so any failure here is fatal to the caller.
func ValidateAdminCredentials() error {
	user := os.Getenv("ADMIN_USER")
	pass := os.Getenv("ADMIN_USER_PASSWORD")

	if user == "" {
		return errors.New("admin credentials validation failed: ADMIN_USER must not be empty")
	}
	if pass == "" {
		return errors.New("admin credentials validation failed: ADMIN_USER_PASSWORD must not be empty")
	}
	if err := defaultPolicy.vet(pass); err != nil {
		return fmt.Errorf("admin credentials validation failed: ADMIN_USER_PASSWORD %v", err)
	}
	return nil
}

// ValidateViewerCredentials checks the optional DEMO_USER /
// DEMO_USER_PASSWORD pair at startup. Misconfigured viewer credentials
// never abort startup: the viewer role is disabled (by unsetting the
// env vars) and the server continues in admin-only mode.
func ValidateViewerCredentials(logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}) error {
	demoUser := os.Getenv("DEMO_USER")
	demoPass := os.Getenv("DEMO_USER_PASSWORD")

	if demoUser == "" {
		logger.Info("viewer role not configured - running in admin-only mode")
		return nil
	}

	disable := func(reason string) {
		logger.Warn(reason + " - disabling viewer role")
		_ = os.Unsetenv("DEMO_USER")
		_ = os.Unsetenv("DEMO_USER_PASSWORD")
	}

	switch {
	case demoPass == "":
		disable("DEMO_USER_PASSWORD is empty")
	case demoUser == os.Getenv("ADMIN_USER"):
		disable("DEMO_USER cannot be the same as ADMIN_USER")
	case defaultPolicy.vet(demoPass) != nil:
		disable("DEMO_USER_PASSWORD does not meet the password policy")
	default:
		logger.Info("viewer role configured successfully", "user", demoUser)
	}
	return nil
}

// isNumericRun reports whether the password is one repeated character or
// an all-digit ascending/descending sequence (with 9->0 wrap).
func isNumericRun(pass string) bool {
	if pass == "" {
		return false
	}
	repeated := true
	for i := 1; i < len(pass); i++ {
		if pass[i] != pass[0] {
			repeated = false
			break
		}
	}
	if repeated {
		return true
	}
	for i := 0; i < len(pass); i++ {
		if pass[i] < '0' || pass[i] > '9' {
			return false
		}
	}
	asc, desc := true, true
	for i := 1; i < len(pass); i++ {
		d := int(pass[i]) - int(pass[i-1])
		if d != 1 && d != -9 {
			asc = false
		}
		if d != -1 && d != 9 {
			desc = false
		}
	}
	return asc || desc
}

var keyboardRows = []string{
	"qwertyuiop", "asdfghjkl", "zxcvbnm",
	"qwerty", "asdfgh", "zxcvb",
}

// hasKeyboardRun reports whether the password contains a keyboard row
// walked in either direction.
func hasKeyboardRun(pass string) bool {
	lower := strings.ToLower(pass)
	for _, row := range keyboardRows {
		if strings.Contains(lower, row) || strings.Contains(lower, reversed(row)) {
			return true
		}
	}
	return false
}

func reversed(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
