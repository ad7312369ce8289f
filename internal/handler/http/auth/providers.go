package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"os"

	authservice "campaign-relay/internal/service/auth"
)

var errInvalidCredentials = errors.New("invalid credentials")

// matchEnv compares a submitted value against an environment-configured
// credential in constant time.
func matchEnv(value, key string) bool {
	return subtle.ConstantTimeCompare([]byte(value), []byte(os.Getenv(key))) == 1
}

// BasicAuthProvider authenticates the single admin account configured
// through ADMIN_USER / ADMIN_USER_PASSWORD.
type BasicAuthProvider struct {
	policy passwordPolicy
}

// NewBasicAuthProvider creates an admin-only provider with the given
// password policy.
func NewBasicAuthProvider(minPasswordLength int, weakPasswords []string) *BasicAuthProvider {
	return &BasicAuthProvider{policy: passwordPolicy{
		minLength:     minPasswordLength,
		weakPasswords: weakPasswords,
	}}
}

func (p *BasicAuthProvider) ValidateCredentials(ctx context.Context, creds authservice.Credentials) error {
	if err := p.policy.precheck(creds.Username, creds.Password); err != nil {
		return err
	}
	// Evaluate both comparisons before branching.
	userOK := matchEnv(creds.Username, "ADMIN_USER")
	passOK := matchEnv(creds.Password, "ADMIN_USER_PASSWORD")
	if userOK && passOK {
		return nil
	}
	return errInvalidCredentials
}

func (p *BasicAuthProvider) IdentifyUser(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", errors.New("username must not be empty")
	}
	if matchEnv(username, "ADMIN_USER") {
		return RoleAdmin, nil
	}
	return "", errors.New("user not found")
}

func (p *BasicAuthProvider) GetRequirements() authservice.CredentialRequirements {
	return authservice.CredentialRequirements{
		MinPasswordLength: p.policy.minLength,
		WeakPasswords:     p.policy.weakPasswords,
	}
}

func (p *BasicAuthProvider) Name() string { return "basic" }

// MultiUserAuthProvider authenticates the admin account plus the optional
// read-only viewer account (DEMO_USER / DEMO_USER_PASSWORD).
type MultiUserAuthProvider struct {
	policy passwordPolicy
}

// NewMultiUserAuthProvider creates a provider serving both the admin and
// viewer roles with the given password policy.
func NewMultiUserAuthProvider(minPasswordLength int, weakPasswords []string) *MultiUserAuthProvider {
	return &MultiUserAuthProvider{policy: passwordPolicy{
		minLength:     minPasswordLength,
		weakPasswords: weakPasswords,
	}}
}

func (p *MultiUserAuthProvider) ValidateCredentials(ctx context.Context, creds authservice.Credentials) error {
	if err := p.policy.precheck(creds.Username, creds.Password); err != nil {
		return err
	}

	userOK := matchEnv(creds.Username, "ADMIN_USER")
	passOK := matchEnv(creds.Password, "ADMIN_USER_PASSWORD")
	if userOK && passOK {
		return nil
	}

	// The viewer account only participates when configured.
	if os.Getenv("DEMO_USER") != "" {
		userOK = matchEnv(creds.Username, "DEMO_USER")
		passOK = matchEnv(creds.Password, "DEMO_USER_PASSWORD")
		if userOK && passOK {
			return nil
		}
	}
	return errInvalidCredentials
}

func (p *MultiUserAuthProvider) IdentifyUser(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", errors.New("username must not be empty")
	}
	if matchEnv(username, "ADMIN_USER") {
		return RoleAdmin, nil
	}
	if os.Getenv("DEMO_USER") != "" && matchEnv(username, "DEMO_USER") {
		return RoleViewer, nil
	}
	return "", errors.New("user not found")
}

func (p *MultiUserAuthProvider) GetRequirements() authservice.CredentialRequirements {
	return authservice.CredentialRequirements{
		MinPasswordLength: p.policy.minLength,
		WeakPasswords:     p.policy.weakPasswords,
	}
}

func (p *MultiUserAuthProvider) Name() string { return "multi-user" }
