package tracker

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"skyhub/internal/models"
)

var (
	demoAirlines = []string{"American Airlines", "Delta", "United", "Emirates", "Lufthansa", "British Airways"}
	demoAirports = []string{"JFK", "LAX", "ORD", "LHR", "CDG", "DXB", "HND", "SIN"}
	demoStatuses = []string{
		models.TrackerStatusEnRoute,
		models.TrackerStatusDelayed,
		models.TrackerStatusLanded,
		models.TrackerStatusBoarding,
		models.TrackerStatusScheduled,
	}
	demoAircraft = []string{"Boeing 737", "Airbus A320", "Boeing 777", "Airbus A380", "Bombardier CRJ", "Embraer E190"}
)

// GenerateDemoFlights builds a random set of tracker flights for the live
// map, in the original's value ranges.
func GenerateDemoFlights(count int) []models.TrackerFlight {
	now := time.Now()
	flights := make([]models.TrackerFlight, 0, count)

	for i := 0; i < count; i++ {
		airline := demoAirlines[rand.Intn(len(demoAirlines))]
		origin := demoAirports[rand.Intn(len(demoAirports))]
		destination := origin
		for destination == origin {
			destination = demoAirports[rand.Intn(len(demoAirports))]
		}

		prefix := strings.ToUpper(airline[:2])
		lat := rand.Float64() * 70
		if rand.Intn(2) == 0 {
			lat = -lat
		}
		lat += 10
		lng := rand.Float64() * 170
		if rand.Intn(2) == 0 {
			lng = -lng
		}

		flights = append(flights, models.TrackerFlight{
			ID:             fmt.Sprintf("flight-%d", i),
			Callsign:       fmt.Sprintf("%s%d", strings.ToUpper(airline[:3]), 100+rand.Intn(900)),
			FlightNumber:   fmt.Sprintf("%s%d", prefix, 100+rand.Intn(900)),
			Airline:        airline,
			Origin:         origin,
			Destination:    destination,
			Altitude:       10000 + rand.Intn(30000),
			Speed:          400 + rand.Intn(200),
			Heading:        float64(rand.Intn(360)),
			Latitude:       lat,
			Longitude:      lng,
			Status:         demoStatuses[rand.Intn(len(demoStatuses))],
			EstArrivalTime: now.Add(time.Duration(rand.Int63n(int64(3 * time.Hour)))),
			Aircraft:       demoAircraft[rand.Intn(len(demoAircraft))],
			DepartureTime:  now.Add(-time.Duration(rand.Int63n(int64(time.Hour)))),
		})
	}
	return flights
}
