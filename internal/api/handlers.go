package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"skyhub/internal/metrics"
	"skyhub/internal/models"
	"skyhub/internal/predictor"
	"skyhub/internal/store"
	"skyhub/internal/tracker"
)

func (s *HTTPServer) handleFlights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query().Get("q")
		writeJSON(w, http.StatusOK, map[string]any{"flights": s.flights.SearchFlights(query)})

	case http.MethodPost:
		var flight models.Flight
		if err := decodeBody(r, &flight); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		created := s.flights.AddFlight(r.Context(), flight)
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleFlightByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/flights/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		flight := s.flights.GetFlight(id)
		if flight == nil {
			writeError(w, http.StatusNotFound, "flight not found")
			return
		}
		writeJSON(w, http.StatusOK, flight)

	case http.MethodPatch:
		var patch models.FlightPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !s.flights.UpdateFlight(r.Context(), id, patch) {
			writeError(w, http.StatusNotFound, "flight not found")
			return
		}
		writeJSON(w, http.StatusOK, s.flights.GetFlight(id))

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleImport ingests CSV text and replaces the schedule. The parser never
// fails; malformed input falls back to the bundled dataset.
func (s *HTTPServer) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body failed")
		return
	}

	flights := s.flights.ImportCSV(r.Context(), string(body))
	writeJSON(w, http.StatusOK, map[string]any{"flights": flights, "count": len(flights)})
}

func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"bookings": s.flights.Bookings()})

	case http.MethodPost:
		var booking models.Booking
		if err := decodeBody(r, &booking); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if booking.FlightID == "" || booking.PassengerName == "" {
			writeError(w, http.StatusBadRequest, "flightId and passengerName are required")
			return
		}
		created := s.flights.AddBooking(r.Context(), booking)
		writeJSON(w, http.StatusCreated, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

type checkInRequest struct {
	Name string `json:"name"`
}

func (s *HTTPServer) handleValidateCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req checkInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	flight := s.flights.ValidateCheckIn(req.Name)
	writeJSON(w, http.StatusOK, map[string]any{"valid": flight != nil, "flight": flight})
}

func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req checkInRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	result := s.flights.PerformCheckIn(r.Context(), req.Name)
	if result.Success {
		metrics.IncCheckIn("success")
	} else {
		metrics.IncCheckIn("not_found")
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handleTrackerFlights(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		snapshot := tracker.FilterFlights(s.tracker.Snapshot(), r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, map[string]any{"flights": snapshot})

	case http.MethodPost:
		var flight models.TrackerFlight
		if err := decodeBody(r, &flight); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if flight.ID == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		s.tracker.AddFlight(flight)
		writeJSON(w, http.StatusCreated, flight)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) handleTrackerFlightByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/tracker/flights/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPatch:
		var patch models.TrackerFlightPatch
		if err := decodeBody(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if !s.tracker.UpdateFlight(id, patch) {
			writeError(w, http.StatusNotFound, "flight not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})

	case http.MethodDelete:
		if !s.tracker.RemoveFlight(id) {
			writeError(w, http.StatusNotFound, "flight not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSimulation starts or stops the position simulation. Both actions
// are idempotent.
func (s *HTTPServer) handleSimulation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Action     string `json:"action"` // start, stop
		IntervalMS int    `json:"intervalMs,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case "start":
		s.tracker.StartSimulation(req.IntervalMS)
		writeJSON(w, http.StatusOK, map[string]string{"status": "running"})
	case "stop":
		s.tracker.StopSimulation()
		writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
	default:
		writeError(w, http.StatusBadRequest, "action must be start or stop")
	}
}

func (s *HTTPServer) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var in predictor.Input
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	price, err := s.predictor.Predict(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"predictedPrice": price})
}

func (s *HTTPServer) handlePredictBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		predictor.Input
		Price int `json:"price"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	booked, err := s.predictor.Book(r.Context(), req.Input, req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, booked)
}

func (s *HTTPServer) handlePredictBooked(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	booked, err := s.predictor.Booked(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load booked flights failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flights": booked})
}

type authRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email)
	if err == store.ErrEmailTaken {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, ok := s.users.Login(r.Context(), req.Email)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown account")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.users.Logout(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path, err := s.exporter.ScheduleWorkbook(s.flights.Flights(), s.flights.Bookings(), s.tracker.Snapshot())
	if err != nil {
		s.log.Error().Err(err).Msg("schedule export failed")
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	return decoder.Decode(dst)
}
