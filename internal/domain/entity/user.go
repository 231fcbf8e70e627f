// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import "time"

// UserProfile is the core identity record of the monitored account. It mixes
// identity, medical and contact fields because the backend stores them as one
// document.
type UserProfile struct {
	ID             string    `json:"_id"`            // Backend-assigned account identifier.
	FullName       string    `json:"fullName"`       // The patient's display name.
	Age            int       `json:"age"`            // The patient's age in years.
	Sex            string    `json:"sex"`            // The patient's sex as recorded by the backend.
	Address        string    `json:"address"`        // Home address, shown alongside fall locations.
	MedicalNotes   string    `json:"medicalNotes"`   // Free-form conditions relevant to responders.
	EmergencyName  string    `json:"nameEmergency"`  // Emergency contact display name.
	EmergencyPhone string    `json:"phoneEmergency"` // Doubles as the login credential key; immutable after registration.
	EmergencyEmail string    `json:"emailEmergency"` // Emergency contact email.
	DeviceID       string    `json:"deviceId"`       // Paired sensor unit; assigned at registration, immutable thereafter.
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Session is the locally persisted authentication state. The profile is
// non-nil whenever IsAuthenticated is true.
type Session struct {
	IsAuthenticated bool         `json:"isAuthenticated"`
	User            *UserProfile `json:"user"`
}

// Valid reports whether the session satisfies its core invariant. A
// logged-out session is valid; use Authenticated to gate access.
func (s *Session) Valid() bool {
	return s != nil && (!s.IsAuthenticated || s.User != nil)
}

// Authenticated reports whether the session belongs to a logged-in account.
func (s *Session) Authenticated() bool {
	return s != nil && s.IsAuthenticated && s.User != nil
}

// DeviceID returns the paired device identifier, or "" when logged out.
func (s *Session) DeviceID() string {
	if s == nil || s.User == nil {
		return ""
	}

	return s.User.DeviceID
}
