package tracker

import (
	"math"
	"sync"
	"time"

	"skyhub/internal/metrics"
	"skyhub/internal/models"

	"github.com/rs/zerolog"
)

// positionStep is the flat-plane projection factor applied per tick:
// delta = cos/sin(heading) * speed/500 * 0.01 degrees.
const (
	speedDivisor = 500.0
	positionStep = 0.01
)

type subscriber struct {
	id int
	fn func([]models.TrackerFlight)
}

// Simulator advances tracked flight positions on a fixed timer and fans the
// updated snapshot out to subscribers. A single goroutine owns the timer;
// the mutex covers concurrent API reads and mutations.
type Simulator struct {
	mu          sync.Mutex
	flights     map[string]models.TrackerFlight
	order       []string
	subscribers []subscriber
	nextSubID   int

	running bool
	stop    chan struct{}
	logger  zerolog.Logger
}

func NewSimulator(initial []models.TrackerFlight, logger zerolog.Logger) *Simulator {
	s := &Simulator{
		flights: make(map[string]models.TrackerFlight, len(initial)),
		logger:  logger,
	}
	for _, f := range initial {
		if _, seen := s.flights[f.ID]; !seen {
			s.order = append(s.order, f.ID)
		}
		s.flights[f.ID] = f
	}
	return s
}

// Snapshot returns all tracked flights in insertion order.
func (s *Simulator) Snapshot() []models.TrackerFlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Simulator) snapshotLocked() []models.TrackerFlight {
	out := make([]models.TrackerFlight, 0, len(s.order))
	for _, id := range s.order {
		if f, ok := s.flights[id]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Subscribe registers a callback and immediately invokes it once with the
// current snapshot. The returned function unsubscribes.
func (s *Simulator) Subscribe(fn func([]models.TrackerFlight)) func() {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	fn(snapshot)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// AddFlight inserts or replaces a flight and publishes immediately.
func (s *Simulator) AddFlight(flight models.TrackerFlight) {
	s.mu.Lock()
	if _, seen := s.flights[flight.ID]; !seen {
		s.order = append(s.order, flight.ID)
	}
	s.flights[flight.ID] = flight
	s.mu.Unlock()

	s.notify()
}

// UpdateFlight merges the patch into an existing flight and publishes.
// Returns false when the id is unknown.
func (s *Simulator) UpdateFlight(id string, patch models.TrackerFlightPatch) bool {
	s.mu.Lock()
	f, ok := s.flights[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if patch.Altitude != nil {
		f.Altitude = *patch.Altitude
	}
	if patch.Speed != nil {
		f.Speed = *patch.Speed
	}
	if patch.Heading != nil {
		f.Heading = *patch.Heading
	}
	if patch.Latitude != nil {
		f.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		f.Longitude = *patch.Longitude
	}
	if patch.Status != nil {
		f.Status = *patch.Status
	}
	s.flights[id] = f
	s.mu.Unlock()

	s.notify()
	return true
}

// RemoveFlight drops a flight and publishes. Returns false when unknown.
func (s *Simulator) RemoveFlight(id string) bool {
	s.mu.Lock()
	if _, ok := s.flights[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.flights, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify()
	return true
}

// StartSimulation begins the repeating tick. Calling it while running is a
// no-op.
func (s *Simulator) StartSimulation(intervalMS int) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	if intervalMS <= 0 {
		intervalMS = models.DefaultTrackerInterval
	}
	s.running = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	s.logger.Info().Int("interval_ms", intervalMS).Msg("position simulation started")

	go func() {
		ticker := time.NewTicker(time.Duration(intervalMS) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// StopSimulation cancels the timer. Idempotent.
func (s *Simulator) StopSimulation() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stop)
	s.mu.Unlock()

	s.logger.Info().Msg("position simulation stopped")
}

// tick advances every non-terminal flight one step and publishes once.
func (s *Simulator) tick() {
	s.mu.Lock()
	for _, id := range s.order {
		f, ok := s.flights[id]
		if !ok {
			continue
		}
		if f.Status == models.TrackerStatusLanded || f.Status == models.TrackerStatusCancelled {
			continue
		}

		headingRad := f.Heading * math.Pi / 180
		speedFactor := float64(f.Speed) / speedDivisor
		f.Latitude += math.Cos(headingRad) * speedFactor * positionStep
		f.Longitude += math.Sin(headingRad) * speedFactor * positionStep
		s.flights[id] = f
	}
	s.mu.Unlock()

	metrics.IncTrackerTick()
	s.notify()
}

// notify delivers the current snapshot to every subscriber in registration
// order.
func (s *Simulator) notify() {
	s.mu.Lock()
	subs := append([]subscriber(nil), s.subscribers...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snapshot)
	}
}
