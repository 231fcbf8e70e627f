// Package model contains the GORM models backing the local session store.
package model

import "time"

// Key names for the session KV table. The logged-in flag and the profile are
// stored under independent keys but are always written and cleared together.
const (
	KeyIsLoggedIn  = "isLoggedIn"
	KeyUserProfile = "userProfile"
)

// SessionEntryModel mirrors the 'session_entries' table: a two-row KV store,
// the client-side equivalent of the mobile app's async storage.
type SessionEntryModel struct {
	Key       string `gorm:"type:varchar(64);primaryKey"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SessionEntryModel) TableName() string {
	return "session_entries"
}
