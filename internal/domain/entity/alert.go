// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Alert is a fall event awaiting caregiver acknowledgement. Alerts exist only
// in memory; the backend keeps the authoritative history.
type Alert struct {
	ID       uuid.UUID  `json:"id"`
	Event    FallEvent  `json:"event"`
	RaisedAt time.Time  `json:"raisedAt"`
	AckedAt  *time.Time `json:"ackedAt,omitempty"`
}

// Acknowledged reports whether the caregiver has dismissed the alert.
func (a *Alert) Acknowledged() bool {
	return a.AckedAt != nil
}
