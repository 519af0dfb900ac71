package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"skyhub/internal/config"
	"skyhub/internal/domain"
	"skyhub/internal/export"
	"skyhub/internal/predictor"
	"skyhub/internal/store"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the JSON API over the booking store, the tracker and
// the auxiliary services.
type HTTPServer struct {
	cfg       config.APIConfig
	flights   *store.BookingStore
	users     *store.UserStore
	tracker   domain.Tracker
	predictor *predictor.Predictor
	exporter  *export.Service
	server    *http.Server
	auth      *HTTPAuth
	log       zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	flights *store.BookingStore,
	users *store.UserStore,
	tracker domain.Tracker,
	pred *predictor.Predictor,
	exporter *export.Service,
	logger zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		flights:   flights,
		users:     users,
		tracker:   tracker,
		predictor: pred,
		exporter:  exporter,
		log:       logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/flights", srv.handleFlights)
	mux.HandleFunc("/api/v1/flights/import", srv.handleImport)
	mux.HandleFunc("/api/v1/flights/", srv.handleFlightByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/checkin", srv.handleCheckIn)
	mux.HandleFunc("/api/v1/checkin/validate", srv.handleValidateCheckIn)
	mux.HandleFunc("/api/v1/tracker/flights", srv.handleTrackerFlights)
	mux.HandleFunc("/api/v1/tracker/flights/", srv.handleTrackerFlightByID)
	mux.HandleFunc("/api/v1/tracker/simulation", srv.handleSimulation)
	mux.HandleFunc("/api/v1/predictions", srv.handlePredict)
	mux.HandleFunc("/api/v1/predictions/book", srv.handlePredictBook)
	mux.HandleFunc("/api/v1/predictions/booked", srv.handlePredictBooked)
	mux.HandleFunc("/api/v1/auth/register", srv.handleRegister)
	mux.HandleFunc("/api/v1/auth/login", srv.handleLogin)
	mux.HandleFunc("/api/v1/auth/logout", srv.handleLogout)
	mux.HandleFunc("/api/v1/export", srv.handleExport)

	protected := srv.auth.Wrap(mux)

	root := http.NewServeMux()
	root.HandleFunc("/healthz", srv.handleHealth)
	root.Handle("/", protected)

	handler := loggingMiddleware(srv.log, root)

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the full middleware stack for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
