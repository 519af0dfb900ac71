package store

import (
	"context"
	"strconv"
	"strings"
	"time"

	"skyhub/internal/events"
	"skyhub/internal/models"
)

// ParseCSV turns comma-separated text into a flight list. The format is the
// original's: first row is headers named after Flight fields, no quoting or
// escaping, missing fields defaulted. Empty input, header-only input, and
// anything unparsable all fall back to the bundled mock dataset.
func ParseCSV(csvText string) []models.Flight {
	if strings.TrimSpace(csvText) == "" {
		return mockFlights()
	}

	lines := strings.Split(csvText, "\n")
	if len(lines) <= 1 {
		return mockFlights()
	}

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var flights []models.Flight
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}

		values := strings.Split(lines[i], ",")
		fields := make(map[string]string, len(headers))
		for j, header := range headers {
			if j < len(values) {
				fields[header] = strings.TrimSpace(values[j])
			} else {
				fields[header] = ""
			}
		}

		flights = append(flights, models.Flight{
			ID:                  csvRowID(fields["id"], i),
			FlightNumber:        fields["flightNumber"],
			Origin:              fields["origin"],
			Destination:         fields["destination"],
			DepartureTime:       csvTime(fields["departureTime"]),
			ArrivalTime:         csvTime(fields["arrivalTime"]),
			Status:              csvStatus(fields["status"]),
			BookingReference:    fields["bookingReference"],
			PassengerName:       fields["passengerName"],
			PassengerEmail:      fields["passengerEmail"],
			CheckedInPassengers: []models.CheckedInPassenger{},
		})
	}

	if len(flights) == 0 {
		return mockFlights()
	}
	return flights
}

// ImportCSV replaces the flight collection with the parsed set and persists.
func (s *BookingStore) ImportCSV(ctx context.Context, csvText string) []models.Flight {
	flights := ParseCSV(csvText)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.flights = flights
	s.persist(ctx)

	if err := s.bus.PublishJSON(events.EventFlightsImported, map[string]int{"count": len(flights)}); err != nil {
		s.logger.Warn().Err(err).Msg("publish flights_imported failed")
	}
	return copyFlights(s.flights)
}

// csvRowID keeps the original's id scheme: row index plus wall-clock millis
// when the row carries no id of its own.
func csvRowID(raw string, row int) string {
	if raw != "" {
		return raw
	}
	return strconv.FormatInt(time.Now().UnixMilli()+int64(row), 10)
}

func csvTime(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Now()
}

func csvStatus(raw string) string {
	if raw == "" {
		return models.StatusScheduled
	}
	return raw
}
