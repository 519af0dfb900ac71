package models

import "time"

// TrackerFlight is the live-map record type. It is unrelated to the booking
// domain Flight and is never persisted; the simulator mutates it in place.
type TrackerFlight struct {
	ID             string    `json:"id"`
	Callsign       string    `json:"callsign"`
	FlightNumber   string    `json:"flightNumber"`
	Airline        string    `json:"airline"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Altitude       int       `json:"altitude"`
	Speed          int       `json:"speed"`
	Heading        float64   `json:"heading"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Status         string    `json:"status"` // EN_ROUTE, DELAYED, LANDED, BOARDING, SCHEDULED, CANCELLED
	EstArrivalTime time.Time `json:"estArrivalTime"`
	Aircraft       string    `json:"aircraft,omitempty"`
	DepartureTime  time.Time `json:"departureTime,omitempty"`
}

// TrackerFlightPatch carries optional field updates for the simulator's UpdateFlight.
type TrackerFlightPatch struct {
	Altitude  *int     `json:"altitude,omitempty"`
	Speed     *int     `json:"speed,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Status    *string  `json:"status,omitempty"`
}
