package store

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"skyhub/internal/domain"
	"skyhub/internal/events"
	"skyhub/internal/models"
	"skyhub/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BookingStore holds the flight and booking collections in memory and keeps
// the snapshot store in sync on every mutation. Persistence failures are
// logged and swallowed: nothing in this system treats storage as fatal.
type BookingStore struct {
	mu       sync.RWMutex
	flights  []models.Flight
	bookings []models.Booking

	snapshots domain.SnapshotStore
	bus       domain.EventPublisher
	logger    zerolog.Logger
}

func NewBookingStore(ctx context.Context, snapshots domain.SnapshotStore, bus domain.EventPublisher, logger zerolog.Logger) *BookingStore {
	s := &BookingStore{
		snapshots: snapshots,
		bus:       bus,
		logger:    logger,
	}
	s.load(ctx)
	return s
}

// load restores both collections from snapshots. A missing or corrupt
// snapshot falls back to the bundled defaults per collection.
func (s *BookingStore) load(ctx context.Context) {
	s.flights = mockFlights()
	s.bookings = seedBookings(s.flights)

	if s.snapshots == nil {
		return
	}

	if data, err := s.snapshots.Load(ctx, models.KeyFlights); err == nil {
		var flights []models.Flight
		if jsonErr := json.Unmarshal(data, &flights); jsonErr == nil {
			s.flights = flights
		} else {
			s.logger.Warn().Err(jsonErr).Msg("corrupt flights snapshot, using bundled defaults")
		}
	} else if err != storage.ErrNoSnapshot {
		s.logger.Warn().Err(err).Msg("load flights snapshot failed, using bundled defaults")
	}

	if data, err := s.snapshots.Load(ctx, models.KeyBookings); err == nil {
		var bookings []models.Booking
		if jsonErr := json.Unmarshal(data, &bookings); jsonErr == nil {
			s.bookings = bookings
		} else {
			s.logger.Warn().Err(jsonErr).Msg("corrupt bookings snapshot, using bundled defaults")
		}
	} else if err != storage.ErrNoSnapshot {
		s.logger.Warn().Err(err).Msg("load bookings snapshot failed, using bundled defaults")
	}
}

// persist writes both collections plus the flattened checked-in passenger
// list. Must be called with the lock held.
func (s *BookingStore) persist(ctx context.Context) {
	if s.snapshots == nil {
		return
	}

	if data, err := json.Marshal(s.flights); err == nil {
		if err := s.snapshots.Save(ctx, models.KeyFlights, data); err != nil {
			s.logger.Error().Err(err).Msg("save flights snapshot failed")
		}
	}

	if data, err := json.Marshal(s.bookings); err == nil {
		if err := s.snapshots.Save(ctx, models.KeyBookings, data); err != nil {
			s.logger.Error().Err(err).Msg("save bookings snapshot failed")
		}
	}

	checkedIn := make([]models.CheckedInPassenger, 0)
	for _, f := range s.flights {
		checkedIn = append(checkedIn, f.CheckedInPassengers...)
	}
	if data, err := json.Marshal(checkedIn); err == nil {
		if err := s.snapshots.Save(ctx, models.KeyCheckedInPassengers, data); err != nil {
			s.logger.Error().Err(err).Msg("save checked-in passengers snapshot failed")
		}
	}
}

// Flights returns a copy of the flight collection in insertion order.
func (s *BookingStore) Flights() []models.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFlights(s.flights)
}

// Bookings returns a copy of the booking collection in insertion order.
func (s *BookingStore) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// SearchFlights filters by case-insensitive substring over flight number,
// origin and destination. An empty query returns everything.
func (s *BookingStore) SearchFlights(query string) []models.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return copyFlights(s.flights)
	}

	var out []models.Flight
	for i := range s.flights {
		f := &s.flights[i]
		if strings.Contains(strings.ToLower(f.FlightNumber), query) ||
			strings.Contains(strings.ToLower(f.Origin), query) ||
			strings.Contains(strings.ToLower(f.Destination), query) {
			out = append(out, copyFlight(f))
		}
	}
	return out
}

// GetFlight returns the flight with the given id, or nil.
func (s *BookingStore) GetFlight(id string) *models.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.flights {
		if s.flights[i].ID == id {
			f := copyFlight(&s.flights[i])
			return &f
		}
	}
	return nil
}

// AddFlight assigns a generated id and an empty check-in list, appends the
// flight and persists.
func (s *BookingStore) AddFlight(ctx context.Context, flight models.Flight) models.Flight {
	s.mu.Lock()
	defer s.mu.Unlock()

	flight.ID = uuid.NewString()
	flight.CheckedInPassengers = []models.CheckedInPassenger{}
	if flight.Status == "" {
		flight.Status = models.StatusScheduled
	}

	s.flights = append(s.flights, flight)
	s.persist(ctx)

	if err := s.bus.PublishJSON(events.EventFlightAdded, flight); err != nil {
		s.logger.Warn().Err(err).Msg("publish flight_added failed")
	}
	return flight
}

// UpdateFlight shallow-merges the patch into the flight with the given id.
// Returns false when no flight matches.
func (s *BookingStore) UpdateFlight(ctx context.Context, id string, patch models.FlightPatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.flights {
		if s.flights[i].ID != id {
			continue
		}

		f := &s.flights[i]
		if patch.FlightNumber != nil {
			f.FlightNumber = *patch.FlightNumber
		}
		if patch.Origin != nil {
			f.Origin = *patch.Origin
		}
		if patch.Destination != nil {
			f.Destination = *patch.Destination
		}
		if patch.DepartureTime != nil {
			f.DepartureTime = *patch.DepartureTime
		}
		if patch.ArrivalTime != nil {
			f.ArrivalTime = *patch.ArrivalTime
		}
		if patch.Status != nil {
			f.Status = *patch.Status
		}
		if patch.PassengerName != nil {
			f.PassengerName = *patch.PassengerName
		}
		if patch.PassengerEmail != nil {
			f.PassengerEmail = *patch.PassengerEmail
		}

		s.persist(ctx)
		if err := s.bus.PublishJSON(events.EventFlightUpdated, *f); err != nil {
			s.logger.Warn().Err(err).Msg("publish flight_updated failed")
		}
		return true
	}
	return false
}

// AddBooking assigns a generated id, defaults HasCheckedIn to false, appends
// the booking and persists. A missing reference gets a generated one.
func (s *BookingStore) AddBooking(ctx context.Context, booking models.Booking) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking.ID = uuid.NewString()
	booking.HasCheckedIn = false
	booking.CheckInTime = nil
	booking.CreatedAt = time.Now()
	if booking.BookingReference == "" {
		booking.BookingReference = newBookingReference()
	}

	s.bookings = append(s.bookings, booking)
	s.persist(ctx)

	if err := s.bus.PublishJSON(events.EventBookingCreated, booking); err != nil {
		s.logger.Warn().Err(err).Msg("publish booking_created failed")
	}
	return booking
}

// newBookingReference generates a short uppercase reference for synthesized
// bookings, e.g. "4F9A2C".
func newBookingReference() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:6]
}

func copyFlights(flights []models.Flight) []models.Flight {
	out := make([]models.Flight, 0, len(flights))
	for i := range flights {
		out = append(out, copyFlight(&flights[i]))
	}
	return out
}

func copyFlight(f *models.Flight) models.Flight {
	cp := *f
	cp.CheckedInPassengers = make([]models.CheckedInPassenger, len(f.CheckedInPassengers))
	copy(cp.CheckedInPassengers, f.CheckedInPassengers)
	return cp
}
