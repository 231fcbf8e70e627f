// Package entity contains the core business objects of the project.
package entity

// ScheduleEntry is a single time-of-day a medication should be taken.
// Entries keep insertion order; ordering is significant only for display.
type ScheduleEntry struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// MedicationReminder is a backend-managed medication schedule for the
// monitored patient.
type MedicationReminder struct {
	ID           string          `json:"_id"`
	MedicineName string          `json:"medicineName"`
	Schedule     []ScheduleEntry `json:"schedule"`
	IsActive     bool            `json:"isActive"`
}
