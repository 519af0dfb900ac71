package store

import (
	"time"

	"skyhub/internal/models"
)

// mockFlights returns the bundled demo schedule. Times are generated relative
// to the moment the dataset is requested, like the original mock data.
func mockFlights() []models.Flight {
	now := time.Now()

	type row struct {
		id, number, origin, destination string
		depOffset, arrOffset            time.Duration
		reference, name, email          string
		status                          string
	}

	rows := []row{
		{"1", "SH101", "New York", "London", time.Hour, 9 * time.Hour, "ABC123", "John Smith", "john@example.com", models.StatusScheduled},
		{"2", "SH102", "London", "Paris", 2 * time.Hour, 3 * time.Hour, "DEF456", "Jane Doe", "jane@example.com", models.StatusBoarding},
		{"3", "SH103", "Paris", "Berlin", -time.Hour, 2 * time.Hour, "GHI789", "Robert Johnson", "robert@example.com", models.StatusDeparted},
		{"4", "SH104", "Berlin", "Rome", -2 * time.Hour, time.Hour, "JKL012", "Sarah Williams", "sarah@example.com", models.StatusArrived},
		{"5", "SH105", "Rome", "Madrid", 3 * time.Hour, 5 * time.Hour, "MNO345", "Michael Brown", "michael@example.com", models.StatusScheduled},
		{"6", "SH106", "Madrid", "Amsterdam", 4 * time.Hour, 4 * time.Hour, "PQR678", "Emily Davis", "emily@example.com", models.StatusScheduled},
		{"7", "SH107", "Amsterdam", "Vienna", -3 * time.Hour, -2 * time.Hour, "STU901", "David Wilson", "david@example.com", models.StatusArrived},
		{"8", "SH108", "Vienna", "Athens", 5 * time.Hour, 6 * time.Hour, "VWX234", "Lisa Martinez", "lisa@example.com", models.StatusScheduled},
		{"9", "SH109", "Athens", "Stockholm", 6 * time.Hour, 7 * time.Hour, "YZA567", "Kevin Taylor", "kevin@example.com", models.StatusScheduled},
		{"10", "SH110", "Stockholm", "New York", -4 * time.Hour, 8 * time.Hour, "BCD890", "Amanda Garcia", "amanda@example.com", models.StatusDeparted},
		{"11", "SH111", "Saint Louis", "Chicago", 2 * time.Hour, 4 * time.Hour, "EFG123", "Thomas Roberts", "thomas@example.com", models.StatusScheduled},
		{"12", "SH112", "Chicago", "Denver", 5 * time.Hour, 8 * time.Hour, "HIJ456", "Patricia White", "patricia@example.com", models.StatusScheduled},
	}

	flights := make([]models.Flight, 0, len(rows))
	for _, r := range rows {
		flights = append(flights, models.Flight{
			ID:                  r.id,
			FlightNumber:        r.number,
			Origin:              r.origin,
			Destination:         r.destination,
			DepartureTime:       now.Add(r.depOffset),
			ArrivalTime:         now.Add(r.arrOffset),
			Status:              r.status,
			BookingReference:    r.reference,
			PassengerName:       r.name,
			PassengerEmail:      r.email,
			CheckedInPassengers: []models.CheckedInPassenger{},
		})
	}
	return flights
}

// seedBookings derives one unchecked booking per mock flight from its legacy
// passenger fields, so the booking collection starts populated.
func seedBookings(flights []models.Flight) []models.Booking {
	now := time.Now()
	bookings := make([]models.Booking, 0, len(flights))
	for _, f := range flights {
		bookings = append(bookings, models.Booking{
			ID:               "b" + f.ID,
			FlightID:         f.ID,
			PassengerName:    f.PassengerName,
			PassengerEmail:   f.PassengerEmail,
			BookingReference: f.BookingReference,
			HasCheckedIn:     false,
			CreatedAt:        now,
		})
	}
	return bookings
}
