// Package service defines interfaces for external collaborators the domain
// depends on but does not implement.
package service

import (
	"context"

	"vigil/internal/domain/entity"
)

// LoginRequest carries the credentials submitted to the backend. The
// emergency contact phone number is the credential key.
type LoginRequest struct {
	PhoneEmergency string `json:"phoneEmergency"`
	Password       string `json:"password"`
}

// RegisterRequest carries a new account registration. The device identifier
// is bound to the account permanently.
type RegisterRequest struct {
	PhoneEmergency string `json:"phoneEmergency"`
	Password       string `json:"password"`
	DeviceID       string `json:"deviceId"`
}

// UpdateProfileRequest carries the mutable profile fields. The device ID and
// emergency phone are immutable post-registration and deliberately absent.
type UpdateProfileRequest struct {
	FullName       string `json:"fullName"`
	Age            int    `json:"age"`
	Sex            string `json:"sex"`
	Address        string `json:"address"`
	MedicalNotes   string `json:"medicalNotes"`
	EmergencyName  string `json:"nameEmergency"`
	EmergencyEmail string `json:"emailEmergency"`
}

// CreateReminderRequest carries a new medication reminder.
type CreateReminderRequest struct {
	UserID       string                 `json:"userId"`
	DeviceID     string                 `json:"deviceId"`
	MedicineName string                 `json:"medicineName"`
	Schedule     []entity.ScheduleEntry `json:"schedule"`
}

// BackendService is the remote fall-detection REST API. Each operation is a
// single HTTP call; no retries, no caching, no offline queue. Errors carrying
// a backend-provided message surface it verbatim as a domain AppError.
type BackendService interface {
	Login(ctx context.Context, req *LoginRequest) (*entity.UserProfile, error)
	Register(ctx context.Context, req *RegisterRequest) (*entity.UserProfile, error)

	FetchUser(ctx context.Context, userID string) (*entity.UserProfile, error)
	UpdateUser(ctx context.Context, userID string, req *UpdateProfileRequest) (*entity.UserProfile, error)

	FetchFallHistory(ctx context.Context, deviceID string) ([]*entity.FallHistoryRecord, error)

	ListReminders(ctx context.Context, userID string) ([]*entity.MedicationReminder, error)
	CreateReminder(ctx context.Context, req *CreateReminderRequest) error
	DeleteReminder(ctx context.Context, reminderID string) error
}
