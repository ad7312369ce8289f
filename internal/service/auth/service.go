package auth

import (
	"context"
	"strings"
)

// Credentials is a username/password pair submitted for authentication.
type Credentials struct {
	Username string
	Password string
}

// CredentialRequirements describes the password policy a provider
// enforces.
type CredentialRequirements struct {
	MinPasswordLength int
	WeakPasswords     []string
}

// AuthProvider validates credentials and resolves users to roles. It is
// framework-agnostic so implementations can back onto environment
// variables, a database, or an external identity service.
type AuthProvider interface {
	// ValidateCredentials checks a username/password pair.
	ValidateCredentials(ctx context.Context, creds Credentials) error

	// IdentifyUser resolves a username to its role ("admin", "viewer").
	IdentifyUser(ctx context.Context, username string) (string, error)

	// GetRequirements returns the provider's password policy.
	GetRequirements() CredentialRequirements

	// Name identifies the provider in logs.
	Name() string
}

// AuthService is the authentication entry point for the HTTP layer. It
// delegates credential checks to the configured provider and answers
// which paths are public.
type AuthService struct {
	provider        AuthProvider
	publicEndpoints []string
}

// NewAuthService creates an AuthService backed by provider.
func NewAuthService(provider AuthProvider, publicEndpoints []string) *AuthService {
	return &AuthService{provider: provider, publicEndpoints: publicEndpoints}
}

// ValidateCredentials checks creds via the configured provider.
func (s *AuthService) ValidateCredentials(ctx context.Context, creds Credentials) error {
	return s.provider.ValidateCredentials(ctx, creds)
}

// IsPublicEndpoint reports whether path matches a configured public
// endpoint prefix.
func (s *AuthService) IsPublicEndpoint(path string) bool {
	for _, ep := range s.publicEndpoints {
		if strings.HasPrefix(path, ep) {
			return true
		}
	}
	return false
}

// GetProvider returns the configured authentication provider.
func (s *AuthService) GetProvider() AuthProvider {
	return s.provider
}
