package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	EventFlightAdded        = "flight_added"
	EventFlightUpdated      = "flight_updated"
	EventFlightsImported    = "flights_imported"
	EventBookingCreated     = "booking_created"
	EventPassengerCheckedIn = "passenger_checked_in"
)

// CheckInPayload is the snapshot event consumers get for a completed check-in.
type CheckInPayload struct {
	BookingID        string    `json:"booking_id"`
	FlightID         string    `json:"flight_id"`
	FlightNumber     string    `json:"flight_number"`
	PassengerName    string    `json:"passenger_name"`
	BookingReference string    `json:"booking_reference"`
	CheckInTime      time.Time `json:"check_in_time"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Handler reacts to an event. Errors are the handler's own problem; the bus
// keeps delivering to the remaining subscribers.
type Handler func(event *Event) error

// Bus provides in-process pub/sub for domain events.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type, synchronously and in
// registration order.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		_ = handler(event)
	}
}

// PublishJSON serializes the payload and publishes an event. A nil bus is a
// no-op so callers can leave eventing unwired.
func (b *Bus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}
