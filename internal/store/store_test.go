package store

import (
	"context"
	"testing"

	"skyhub/internal/events"
	"skyhub/internal/models"
	"skyhub/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *BookingStore {
	t.Helper()
	return NewBookingStore(context.Background(), storage.NewMemoryStore(), events.NewBus(), zerolog.Nop())
}

func TestBookingStore_Defaults(t *testing.T) {
	s := newTestStore(t)

	flights := s.Flights()
	require.Len(t, flights, 12)
	assert.Equal(t, "1", flights[0].ID)
	assert.Equal(t, "SH101", flights[0].FlightNumber)
	assert.Equal(t, "John Smith", flights[0].PassengerName)
	assert.Equal(t, "ABC123", flights[0].BookingReference)

	bookings := s.Bookings()
	require.Len(t, bookings, 12)
	assert.Equal(t, "b1", bookings[0].ID)
	assert.Equal(t, "1", bookings[0].FlightID)
	assert.False(t, bookings[0].HasCheckedIn)
}

func TestBookingStore_SearchFlights(t *testing.T) {
	s := newTestStore(t)

	t.Run("EmptyQueryReturnsAll", func(t *testing.T) {
		assert.Len(t, s.SearchFlights(""), 12)
		assert.Len(t, s.SearchFlights("   "), 12)
	})

	t.Run("MatchesFlightNumber", func(t *testing.T) {
		got := s.SearchFlights("sh101")
		require.Len(t, got, 1)
		assert.Equal(t, "SH101", got[0].FlightNumber)
	})

	t.Run("MatchesRouteSubstring", func(t *testing.T) {
		got := s.SearchFlights("london")
		// London is the destination of SH101 and the origin of SH102.
		assert.Len(t, got, 2)
	})

	t.Run("NoMatch", func(t *testing.T) {
		assert.Empty(t, s.SearchFlights("zzz"))
	})
}

func TestBookingStore_GetFlight(t *testing.T) {
	s := newTestStore(t)

	f := s.GetFlight("1")
	require.NotNil(t, f)
	assert.Equal(t, "SH101", f.FlightNumber)

	assert.Nil(t, s.GetFlight("nope"))
}

func TestBookingStore_AddFlight(t *testing.T) {
	s := newTestStore(t)

	added := s.AddFlight(context.Background(), models.Flight{
		FlightNumber: "SH200",
		Origin:       "Oslo",
		Destination:  "Helsinki",
	})

	assert.NotEmpty(t, added.ID)
	assert.Equal(t, models.StatusScheduled, added.Status)
	assert.NotNil(t, added.CheckedInPassengers)
	assert.Empty(t, added.CheckedInPassengers)

	assert.Len(t, s.Flights(), 13)
	require.NotNil(t, s.GetFlight(added.ID))
}

func TestBookingStore_UpdateFlight(t *testing.T) {
	s := newTestStore(t)

	t.Run("PatchesOnlyProvidedFields", func(t *testing.T) {
		status := models.StatusCancelled
		ok := s.UpdateFlight(context.Background(), "1", models.FlightPatch{Status: &status})
		require.True(t, ok)

		f := s.GetFlight("1")
		require.NotNil(t, f)
		assert.Equal(t, models.StatusCancelled, f.Status)
		assert.Equal(t, "SH101", f.FlightNumber)
		assert.Equal(t, "John Smith", f.PassengerName)
	})

	t.Run("UnknownID", func(t *testing.T) {
		status := models.StatusArrived
		assert.False(t, s.UpdateFlight(context.Background(), "nope", models.FlightPatch{Status: &status}))
	})
}

func TestBookingStore_AddBooking(t *testing.T) {
	s := newTestStore(t)

	t.Run("DefaultsAndGeneratedReference", func(t *testing.T) {
		created := s.AddBooking(context.Background(), models.Booking{
			FlightID:      "2",
			PassengerName: "Grace Hopper",
			HasCheckedIn:  true, // ignored on create
		})

		assert.NotEmpty(t, created.ID)
		assert.False(t, created.HasCheckedIn)
		assert.Nil(t, created.CheckInTime)
		assert.Len(t, created.BookingReference, 6)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Len(t, s.Bookings(), 13)
	})

	t.Run("KeepsProvidedReference", func(t *testing.T) {
		created := s.AddBooking(context.Background(), models.Booking{
			FlightID:         "3",
			PassengerName:    "Ada Lovelace",
			BookingReference: "XYZ999",
		})
		assert.Equal(t, "XYZ999", created.BookingReference)
	})
}

func TestBookingStore_SnapshotRoundTrip(t *testing.T) {
	snapshots := storage.NewMemoryStore()
	ctx := context.Background()

	s1 := NewBookingStore(ctx, snapshots, events.NewBus(), zerolog.Nop())
	added := s1.AddFlight(ctx, models.Flight{FlightNumber: "SH300", Origin: "Lisbon", Destination: "Porto"})

	// A fresh store over the same snapshots picks up the persisted state
	// instead of the bundled defaults.
	s2 := NewBookingStore(ctx, snapshots, events.NewBus(), zerolog.Nop())
	assert.Len(t, s2.Flights(), 13)
	require.NotNil(t, s2.GetFlight(added.ID))
}

func TestBookingStore_CorruptSnapshotFallsBack(t *testing.T) {
	snapshots := storage.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, snapshots.Save(ctx, models.KeyFlights, []byte("{not json")))

	s := NewBookingStore(ctx, snapshots, events.NewBus(), zerolog.Nop())
	assert.Len(t, s.Flights(), 12)
}

func TestBookingStore_PublishesEvents(t *testing.T) {
	bus := events.NewBus()
	var seen []string
	for _, evt := range []string{events.EventFlightAdded, events.EventBookingCreated} {
		eventType := evt
		bus.Subscribe(eventType, func(e *events.Event) error {
			seen = append(seen, eventType)
			return nil
		})
	}

	ctx := context.Background()
	s := NewBookingStore(ctx, storage.NewMemoryStore(), bus, zerolog.Nop())
	s.AddFlight(ctx, models.Flight{FlightNumber: "SH400"})
	s.AddBooking(ctx, models.Booking{FlightID: "1", PassengerName: "Test Passenger"})

	assert.Equal(t, []string{events.EventFlightAdded, events.EventBookingCreated}, seen)
}
