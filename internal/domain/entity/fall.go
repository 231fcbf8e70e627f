// Package entity contains the core business objects of the project.
package entity

import (
	"time"

	"github.com/paulmach/orb"
)

// Location is a detected coordinate pair as delivered by the backend.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point converts the location to an orb geometry (lon/lat order).
func (l Location) Point() orb.Point {
	return orb.Point{l.Longitude, l.Latitude}
}

// FallEvent is a single detected-fall occurrence received over the live event
// channel. Transient: kept in memory for alerting and map display only.
type FallEvent struct {
	DeviceID  string    `json:"deviceId"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location"` // Nil when the sensor had no fix.
	Message   string    `json:"message"`
}

// FallHistoryRecord is a stored fall occurrence fetched in bulk for
// statistics. Read-only on the client.
type FallHistoryRecord struct {
	ID        string    `json:"_id"`
	DeviceID  string    `json:"deviceId"`
	Timestamp time.Time `json:"timestamp"`
	Location  *Location `json:"location"`
}
