package store

import (
	"context"
	"strings"
	"time"

	"skyhub/internal/events"
	"skyhub/internal/models"

	"github.com/google/uuid"
)

// CheckInResult is what PerformCheckIn hands back. Absence of a match is the
// only failure signal; no error is ever raised.
type CheckInResult struct {
	Success bool            `json:"success"`
	Flight  *models.Flight  `json:"flight"`
	Booking *models.Booking `json:"booking,omitempty"`
}

// ValidateCheckIn scans for a booking whose passenger name matches exactly
// (case-insensitive) and returns the associated flight. When no booking
// matches it falls back to the flights' legacy single-passenger fields,
// exact match first, then substring. Returns nil when nothing matches.
//
// Validation and execution deliberately share one matching routine; the
// original had them diverge, which this implementation treats as a bug.
func (s *BookingStore) ValidateCheckIn(name string) *models.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, flightIdx := s.findPassenger(name)
	if flightIdx < 0 {
		return nil
	}
	f := copyFlight(&s.flights[flightIdx])
	return &f
}

// PerformCheckIn runs the same matching as ValidateCheckIn and executes the
// check-in. Checking in an already checked-in booking succeeds without
// duplicating anything. A legacy flight-level match with no booking
// synthesizes one on the fly.
func (s *BookingStore) PerformCheckIn(ctx context.Context, name string) CheckInResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookingIdx, flightIdx := s.findPassenger(name)
	if flightIdx < 0 {
		return CheckInResult{Success: false, Flight: nil}
	}

	now := time.Now()
	flight := &s.flights[flightIdx]

	var booking *models.Booking
	if bookingIdx >= 0 {
		booking = &s.bookings[bookingIdx]
		if booking.HasCheckedIn {
			// Idempotent: report success with the existing state.
			f := copyFlight(flight)
			b := *booking
			return CheckInResult{Success: true, Flight: &f, Booking: &b}
		}
		booking.HasCheckedIn = true
		booking.CheckInTime = &now
	} else {
		// Legacy flight-level passenger with no booking record.
		synthesized := models.Booking{
			ID:               uuid.NewString(),
			FlightID:         flight.ID,
			PassengerName:    flight.PassengerName,
			PassengerEmail:   flight.PassengerEmail,
			BookingReference: newBookingReference(),
			HasCheckedIn:     true,
			CheckInTime:      &now,
			CreatedAt:        now,
		}
		s.bookings = append(s.bookings, synthesized)
		booking = &s.bookings[len(s.bookings)-1]
	}

	s.appendCheckedIn(flight, booking, now)
	s.persist(ctx)

	payload := events.CheckInPayload{
		BookingID:        booking.ID,
		FlightID:         flight.ID,
		FlightNumber:     flight.FlightNumber,
		PassengerName:    booking.PassengerName,
		BookingReference: booking.BookingReference,
		CheckInTime:      now,
	}
	if err := s.bus.PublishJSON(events.EventPassengerCheckedIn, payload); err != nil {
		s.logger.Warn().Err(err).Msg("publish passenger_checked_in failed")
	}

	f := copyFlight(flight)
	b := *booking
	return CheckInResult{Success: true, Flight: &f, Booking: &b}
}

// findPassenger resolves a passenger name to (booking index, flight index).
// Booking matches win; a legacy flight match reports bookingIdx -1. No match
// at all reports (-1, -1). Must be called with the lock held.
func (s *BookingStore) findPassenger(name string) (bookingIdx, flightIdx int) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return -1, -1
	}

	for i := range s.bookings {
		if strings.ToLower(s.bookings[i].PassengerName) != needle {
			continue
		}
		for j := range s.flights {
			if s.flights[j].ID == s.bookings[i].FlightID {
				return i, j
			}
		}
		// Dangling flight reference; keep scanning.
	}

	for j := range s.flights {
		if strings.ToLower(s.flights[j].PassengerName) == needle {
			return -1, j
		}
	}
	for j := range s.flights {
		if strings.Contains(strings.ToLower(s.flights[j].PassengerName), needle) {
			return -1, j
		}
	}
	return -1, -1
}

// appendCheckedIn adds a CheckedInPassenger entry unless one with the same
// name (case-insensitive) is already on the flight.
func (s *BookingStore) appendCheckedIn(flight *models.Flight, booking *models.Booking, now time.Time) {
	for _, p := range flight.CheckedInPassengers {
		if strings.EqualFold(p.Name, booking.PassengerName) {
			return
		}
	}
	flight.CheckedInPassengers = append(flight.CheckedInPassengers, models.CheckedInPassenger{
		ID:          uuid.NewString(),
		Name:        booking.PassengerName,
		Email:       booking.PassengerEmail,
		SeatNumber:  booking.SeatNumber,
		CheckInTime: now,
	})
}
