// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"vigil/internal/domain/entity"
)

// --- Input DTOs ---

// LoginInput defines the data required to log in. The emergency contact
// phone number is the credential key.
type LoginInput struct {
	PhoneEmergency string `json:"phoneEmergency" validate:"required"`
	Password       string `json:"password" validate:"required"`
}

// RegisterInput defines the data required to register a new account and bind
// it to a sensor device.
type RegisterInput struct {
	PhoneEmergency string `json:"phoneEmergency" validate:"required"`
	Password       string `json:"password" validate:"required,min=6"`
	DeviceID       string `json:"deviceId" validate:"required"`
}

// --- Output DTOs ---

// SessionOutput returns the authenticated session state.
type SessionOutput struct {
	Session *entity.Session `json:"session"`
}

// AuthUsecase defines the authentication and session-gating operations. All
// session mutations flow through here so the persisted flag and profile can
// never diverge.
type AuthUsecase interface {
	// Login authenticates against the backend and atomically persists the
	// session. A rejected login leaves the stored session untouched.
	Login(ctx context.Context, input *LoginInput) (*SessionOutput, error)

	// Register creates a backend account. It does not log the account in;
	// the caller proceeds to Login, matching the registration flow.
	Register(ctx context.Context, input *RegisterInput) (*entity.UserProfile, error)

	// Logout atomically clears the persisted flag and profile.
	Logout(ctx context.Context) error

	// Current returns the persisted session, or an unauthenticated session
	// when none was ever stored.
	Current(ctx context.Context) (*entity.Session, error)
}
