package models

import "time"

type Booking struct {
	ID               string     `json:"id"`
	FlightID         string     `json:"flightId"`
	PassengerName    string     `json:"passengerName"`
	PassengerEmail   string     `json:"passengerEmail"`
	BookingReference string     `json:"bookingReference"`
	SeatNumber       string     `json:"seatNumber,omitempty"`
	HasCheckedIn     bool       `json:"hasCheckedIn"`
	CheckInTime      *time.Time `json:"checkInTime,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}
