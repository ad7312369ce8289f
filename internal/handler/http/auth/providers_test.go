package auth

import (
	"context"
	"testing"

	authservice "campaign-relay/internal/service/auth"
)

const (
	testAdminPass  = "Adm1n&Unguessable!42"
	testViewerPass = "Vi3wer&Unguessable!77"
)

func setTestAccounts(t *testing.T, withViewer bool) {
	t.Helper()
	t.Setenv("ADMIN_USER", "admin@example.com")
	t.Setenv("ADMIN_USER_PASSWORD", testAdminPass)
	if withViewer {
		t.Setenv("DEMO_USER", "viewer@example.com")
		t.Setenv("DEMO_USER_PASSWORD", testViewerPass)
	} else {
		t.Setenv("DEMO_USER", "")
		t.Setenv("DEMO_USER_PASSWORD", "")
	}
}

func weakList() []string {
	return []string{"password", "123456", "admin", "test", "secret"}
}

func TestBasicAuthProvider_ValidateCredentials(t *testing.T) {
	setTestAccounts(t, false)
	p := NewBasicAuthProvider(12, weakList())
	ctx := context.Background()

	tests := []struct {
		name    string
		user    string
		pass    string
		wantErr bool
	}{
		{"admin accepted", "admin@example.com", testAdminPass, false},
		{"wrong password", "admin@example.com", "Wr0ng&Unguessable!42", true},
		{"wrong user", "other@example.com", testAdminPass, true},
		{"empty credentials", "", "", true},
		{"short password", "admin@example.com", "short", true},
		{"weak password", "admin@example.com", "password-long-enough", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateCredentials(ctx, authservice.Credentials{Username: tt.user, Password: tt.pass})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBasicAuthProvider_IdentifyUser(t *testing.T) {
	setTestAccounts(t, true)
	p := NewBasicAuthProvider(12, weakList())
	ctx := context.Background()

	role, err := p.IdentifyUser(ctx, "admin@example.com")
	if err != nil || role != RoleAdmin {
		t.Errorf("admin lookup = (%q, %v), want (%q, nil)", role, err, RoleAdmin)
	}
	// The basic provider only knows the admin account.
	if _, err := p.IdentifyUser(ctx, "viewer@example.com"); err == nil {
		t.Error("viewer should not resolve through the basic provider")
	}
	if _, err := p.IdentifyUser(ctx, ""); err == nil {
		t.Error("empty username should not resolve")
	}
}

func TestMultiUserAuthProvider_ValidateCredentials(t *testing.T) {
	setTestAccounts(t, true)
	p := NewMultiUserAuthProvider(12, weakList())
	ctx := context.Background()

	tests := []struct {
		name    string
		user    string
		pass    string
		wantErr bool
	}{
		{"admin accepted", "admin@example.com", testAdminPass, false},
		{"viewer accepted", "viewer@example.com", testViewerPass, false},
		{"crossed credentials", "viewer@example.com", testAdminPass, true},
		{"unknown user", "other@example.com", testViewerPass, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.ValidateCredentials(ctx, authservice.Credentials{Username: tt.user, Password: tt.pass})
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMultiUserAuthProvider_ViewerDisabled(t *testing.T) {
	setTestAccounts(t, true)
	t.Setenv("DEMO_USER", "")
	p := NewMultiUserAuthProvider(12, weakList())
	ctx := context.Background()

	creds := authservice.Credentials{Username: "viewer@example.com", Password: testViewerPass}
	if err := p.ValidateCredentials(ctx, creds); err == nil {
		t.Error("viewer credentials should be rejected when DEMO_USER is unset")
	}
	if _, err := p.IdentifyUser(ctx, "viewer@example.com"); err == nil {
		t.Error("viewer should not resolve when DEMO_USER is unset")
	}
}

func TestMultiUserAuthProvider_IdentifyUser(t *testing.T) {
	setTestAccounts(t, true)
	p := NewMultiUserAuthProvider(12, weakList())
	ctx := context.Background()

	role, err := p.IdentifyUser(ctx, "admin@example.com")
	if err != nil || role != RoleAdmin {
		t.Errorf("admin lookup = (%q, %v), want (%q, nil)", role, err, RoleAdmin)
	}
	role, err = p.IdentifyUser(ctx, "viewer@example.com")
	if err != nil || role != RoleViewer {
		t.Errorf("viewer lookup = (%q, %v), want (%q, nil)", role, err, RoleViewer)
	}
	if _, err := p.IdentifyUser(ctx, "other@example.com"); err == nil {
		t.Error("unknown user should not resolve")
	}
}

func TestProviderRequirements(t *testing.T) {
	weak := weakList()

	basic := NewBasicAuthProvider(12, weak)
	if req := basic.GetRequirements(); req.MinPasswordLength != 12 || len(req.WeakPasswords) != len(weak) {
		t.Errorf("unexpected basic requirements: %+v", req)
	}
	if basic.Name() != "basic" {
		t.Errorf("unexpected provider name %q", basic.Name())
	}

	multi := NewMultiUserAuthProvider(16, weak)
	if req := multi.GetRequirements(); req.MinPasswordLength != 16 {
		t.Errorf("unexpected multi-user requirements: %+v", req)
	}
	if multi.Name() != "multi-user" {
		t.Errorf("unexpected provider name %q", multi.Name())
	}
}
