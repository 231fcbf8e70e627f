package usecase

import (
	"context"

	"vigil/internal/domain/entity"
)

// UpdateProfileInput defines the mutable profile fields. The device ID and
// emergency phone are immutable post-registration and cannot appear here.
type UpdateProfileInput struct {
	FullName       string `json:"fullName" validate:"required"`
	Age            int    `json:"age" validate:"min=0,max=150"`
	Sex            string `json:"sex"`
	Address        string `json:"address"`
	MedicalNotes   string `json:"medicalNotes"`
	EmergencyName  string `json:"nameEmergency"`
	EmergencyEmail string `json:"emailEmergency" validate:"omitempty,email"`
}

// ProfileUsecase reads and updates the account profile through the backend.
type ProfileUsecase interface {
	// GetProfile fetches the stored profile for the logged-in account.
	GetProfile(ctx context.Context) (*entity.UserProfile, error)

	// UpdateProfile submits the mutable fields, refreshes the persisted
	// session copy and returns the stored profile.
	UpdateProfile(ctx context.Context, input *UpdateProfileInput) (*entity.UserProfile, error)
}
