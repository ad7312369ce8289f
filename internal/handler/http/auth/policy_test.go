package auth

import (
	"os"
	"strings"
	"testing"
)

func TestValidateAdminCredentials(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		pass    string
		wantErr string // substring; "" means success
	}{
		{"valid credentials", "admin@example.com", "Str0ng&Unguessable!42", ""},
		{"empty user", "", "Str0ng&Unguessable!42", "ADMIN_USER must not be empty"},
		{"empty password", "admin@example.com", "", "ADMIN_USER_PASSWORD must not be empty"},
		{"too short", "admin@example.com", "short1!", "at least 12 characters"},
		{"weak password exact", "admin@example.com", "password1234", "weak password"},
		{"weak password variant", "admin@example.com", "admin1234567890", "common weak passwords"},
		{"repeated characters", "admin@example.com", "aaaaaaaaaaaa", "numeric pattern"},
		{"ascending digits", "admin@example.com", "123456789012", "numeric pattern"},
		{"descending digits", "admin@example.com", "210987654321", "numeric pattern"},
		{"keyboard walk", "admin@example.com", "Xqwertyuiop9", "keyboard pattern"},
		{"reversed keyboard walk", "admin@example.com", "Xpoiuytrewq9", "keyboard pattern"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_USER", tt.user)
			t.Setenv("ADMIN_USER_PASSWORD", tt.pass)

			err := ValidateAdminCredentials()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

type recordingLogger struct {
	infos []string
	warns []string
}

func (l *recordingLogger) Info(msg string, args ...any) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, args ...any) { l.warns = append(l.warns, msg) }

func TestValidateViewerCredentials(t *testing.T) {
	const strongPass = "Vi3wer&Unguessable!77"

	tests := []struct {
		name         string
		demoUser     string
		demoPass     string
		wantWarn     string // substring of the single warn, "" means no warn
		wantDisabled bool
	}{
		{"not configured", "", "", "", false},
		{"configured", "viewer@example.com", strongPass, "", false},
		{"empty password", "viewer@example.com", "", "DEMO_USER_PASSWORD is empty", true},
		{"same as admin", "admin@example.com", strongPass, "same as ADMIN_USER", true},
		{"too short", "viewer@example.com", "short", "password policy", true},
		{"weak password", "viewer@example.com", "password1234", "password policy", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ADMIN_USER", "admin@example.com")
			t.Setenv("DEMO_USER", tt.demoUser)
			t.Setenv("DEMO_USER_PASSWORD", tt.demoPass)

			logger := &recordingLogger{}
			if err := ValidateViewerCredentials(logger); err != nil {
				t.Fatalf("viewer validation must never fail startup, got %v", err)
			}

			if tt.wantWarn == "" {
				if len(logger.warns) != 0 {
					t.Fatalf("unexpected warnings: %v", logger.warns)
				}
			} else {
				if len(logger.warns) != 1 || !strings.Contains(logger.warns[0], tt.wantWarn) {
					t.Fatalf("want warning containing %q, got %v", tt.wantWarn, logger.warns)
				}
			}

			if tt.wantDisabled && os.Getenv("DEMO_USER") != "" {
				t.Error("DEMO_USER should be unset when the viewer role is disabled")
			}
			if !tt.wantDisabled && tt.demoUser != "" && os.Getenv("DEMO_USER") != tt.demoUser {
				t.Error("DEMO_USER should survive successful validation")
			}
		})
	}
}

func TestPasswordPolicyPrecheck(t *testing.T) {
	policy := passwordPolicy{minLength: 12, weakPasswords: []string{"password", "admin"}}

	if err := policy.precheck("user", "G00d&Long!Passphrase"); err != nil {
		t.Errorf("strong password rejected: %v", err)
	}
	if err := policy.precheck("", "G00d&Long!Passphrase"); err == nil {
		t.Error("empty username accepted")
	}
	if err := policy.precheck("user", "short"); err == nil {
		t.Error("short password accepted")
	}
	if err := policy.precheck("user", "PASSWORD-but-long-enough"); err == nil {
		t.Error("weak-prefix password accepted despite different case")
	}
}
