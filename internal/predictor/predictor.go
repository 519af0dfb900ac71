package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"skyhub/internal/domain"
	"skyhub/internal/models"
	"skyhub/internal/storage"

	"github.com/rs/zerolog"
)

var ErrIncompleteInput = errors.New("origin, destination, airline and departure date are required")

// Input describes one prediction request.
type Input struct {
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	Airline       string    `json:"airline"`
	DepartureDate time.Time `json:"departureDate"`
	ReturnDate    time.Time `json:"returnDate,omitempty"`
	Passengers    int       `json:"passengers"`
}

// BookedFlight is what a booked prediction persists under the bookedFlights
// key, mirroring the original's record shape.
type BookedFlight struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flightNumber"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	Price         int       `json:"price"`
	Airline       string    `json:"airline"`
	Status        string    `json:"status"`
}

// Predictor implements the toy price formula. The formula is intentionally
// meaningless; it exists so the demo has something to show.
type Predictor struct {
	mu        sync.Mutex
	snapshots domain.SnapshotStore
	logger    zerolog.Logger
	rnd       *rand.Rand
}

func New(snapshots domain.SnapshotStore, logger zerolog.Logger) *Predictor {
	return &Predictor{
		snapshots: snapshots,
		logger:    logger,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Predict computes the toy price: a random base, a "distance" made from the
// city name lengths, an airline premium, a weekend surcharge, multiplied by
// the passenger count.
func (p *Predictor) Predict(in Input) (int, error) {
	if in.Origin == "" || in.Destination == "" || in.Airline == "" || in.DepartureDate.IsZero() {
		return 0, ErrIncompleteInput
	}
	passengers := in.Passengers
	if passengers <= 0 {
		passengers = 1
	}

	p.mu.Lock()
	basePrice := p.rnd.Intn(300) + 200
	p.mu.Unlock()

	distanceFactor := abs(len(in.Destination)-len(in.Origin)) * 50
	airlineFactor := len(in.Airline) * 10
	dateFactor := 0
	if wd := in.DepartureDate.Weekday(); wd == time.Saturday || wd == time.Sunday {
		dateFactor = 100
	}

	return (basePrice + distanceFactor + airlineFactor + dateFactor) * passengers, nil
}

// Book persists a predicted flight under the bookedFlights key and returns
// the stored record.
func (p *Predictor) Book(ctx context.Context, in Input, price int) (BookedFlight, error) {
	if price <= 0 || in.Origin == "" || in.Destination == "" || in.DepartureDate.IsZero() {
		return BookedFlight{}, ErrIncompleteInput
	}

	p.mu.Lock()
	id := fmt.Sprintf("FL-%d", p.rnd.Intn(10000))
	number := fmt.Sprintf("%s%d", strings.ToUpper(airlinePrefix(in.Airline)), p.rnd.Intn(1000))
	p.mu.Unlock()

	arrival := in.ReturnDate
	if arrival.IsZero() {
		arrival = in.DepartureDate.Add(3 * time.Hour)
	}

	booked := BookedFlight{
		ID:            id,
		FlightNumber:  number,
		Origin:        in.Origin,
		Destination:   in.Destination,
		DepartureTime: in.DepartureDate,
		ArrivalTime:   arrival,
		Price:         price,
		Airline:       in.Airline,
		Status:        "CONFIRMED",
	}

	existing, err := p.loadBooked(ctx)
	if err != nil {
		return BookedFlight{}, err
	}
	existing = append(existing, booked)

	data, err := json.Marshal(existing)
	if err != nil {
		return BookedFlight{}, err
	}
	if err := p.snapshots.Save(ctx, models.KeyBookedFlights, data); err != nil {
		return BookedFlight{}, fmt.Errorf("save booked flights: %w", err)
	}

	p.logger.Info().Str("flight_id", booked.ID).Int("price", price).Msg("predicted flight booked")
	return booked, nil
}

// Booked returns the accumulated prediction bookings.
func (p *Predictor) Booked(ctx context.Context) ([]BookedFlight, error) {
	return p.loadBooked(ctx)
}

func (p *Predictor) loadBooked(ctx context.Context) ([]BookedFlight, error) {
	data, err := p.snapshots.Load(ctx, models.KeyBookedFlights)
	if err == storage.ErrNoSnapshot {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load booked flights: %w", err)
	}

	var booked []BookedFlight
	if err := json.Unmarshal(data, &booked); err != nil {
		p.logger.Warn().Err(err).Msg("corrupt booked flights snapshot, starting empty")
		return nil, nil
	}
	return booked, nil
}

func airlinePrefix(airline string) string {
	if len(airline) >= 2 {
		return airline[:2]
	}
	return airline
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
