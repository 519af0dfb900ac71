package models

import "time"

type Flight struct {
	ID               string    `json:"id"`
	FlightNumber     string    `json:"flightNumber"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	DepartureTime    time.Time `json:"departureTime"`
	ArrivalTime      time.Time `json:"arrivalTime"`
	Status           string    `json:"status"` // SCHEDULED, BOARDING, DEPARTED, ARRIVED, CANCELLED
	BookingReference string    `json:"bookingReference"`
	PassengerName    string    `json:"passengerName"`
	PassengerEmail   string    `json:"passengerEmail"`

	CheckedInPassengers []CheckedInPassenger `json:"checkedInPassengers"`
}

// CheckedInPassenger is one completed check-in attached to a flight.
type CheckedInPassenger struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	SeatNumber  string    `json:"seatNumber,omitempty"`
	CheckInTime time.Time `json:"checkInTime"`
}

// FlightPatch carries optional field updates for UpdateFlight.
// Nil fields are left untouched.
type FlightPatch struct {
	FlightNumber   *string    `json:"flightNumber,omitempty"`
	Origin         *string    `json:"origin,omitempty"`
	Destination    *string    `json:"destination,omitempty"`
	DepartureTime  *time.Time `json:"departureTime,omitempty"`
	ArrivalTime    *time.Time `json:"arrivalTime,omitempty"`
	Status         *string    `json:"status,omitempty"`
	PassengerName  *string    `json:"passengerName,omitempty"`
	PassengerEmail *string    `json:"passengerEmail,omitempty"`
}
