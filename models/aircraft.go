package models

import "time"

// AircraftStatus is the position report a simulator client pushes on every
// update cycle.
type AircraftStatus struct {
	Callsign    string  `json:"callsign"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Altitude    float64 `json:"altitude"`
	Heading     float64 `json:"heading"`
	GroundSpeed float64 `json:"groundSpeed"`
	Frequency   int     `json:"frequency,omitempty"`
	IsOnGround  bool    `json:"isOnGround"`
}

// TrackedAircraft is the live-session record kept for liveness monitoring.
// ClientID is the simulator connection id; it is only stable for the
// lifetime of that connection.
type TrackedAircraft struct {
	ClientID    string
	LastUpdated time.Time
	Status      AircraftStatus
}
