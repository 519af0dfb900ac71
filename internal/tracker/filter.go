package tracker

import (
	"fmt"
	"strings"

	"skyhub/internal/models"
)

// FilterFlights keeps the flights whose number, route, airline or callsign
// contains the query. An empty query keeps everything.
func FilterFlights(flights []models.TrackerFlight, query string) []models.TrackerFlight {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return flights
	}

	var out []models.TrackerFlight
	for _, f := range flights {
		if strings.Contains(strings.ToLower(f.FlightNumber), query) ||
			strings.Contains(strings.ToLower(f.Origin), query) ||
			strings.Contains(strings.ToLower(f.Destination), query) ||
			strings.Contains(strings.ToLower(f.Airline), query) ||
			strings.Contains(strings.ToLower(f.Callsign), query) {
			out = append(out, f)
		}
	}
	return out
}

// FormatAltitude renders feet with a thousands separator, e.g. "32,000 ft".
func FormatAltitude(alt int) string {
	s := fmt.Sprintf("%d", alt)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s + " ft"
}

// FormatSpeed renders ground speed, e.g. "520 mph".
func FormatSpeed(speed int) string {
	return fmt.Sprintf("%d mph", speed)
}
