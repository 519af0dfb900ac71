package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"skyhub/internal/config"
	"skyhub/internal/events"
	"skyhub/internal/export"
	"skyhub/internal/models"
	"skyhub/internal/predictor"
	"skyhub/internal/storage"
	"skyhub/internal/store"
	"skyhub/internal/tracker"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey = "test-key"
	testExtra  = "test-extra"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	return newTestServerWithConfig(t, config.APIConfig{
		Enabled: true,
		HTTP:    config.APIHTTPConfig{Port: 0},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: testAPIKey, Extra: testExtra, Name: "test-client"},
			},
		},
	})
}

func newTestServerWithConfig(t *testing.T, cfg config.APIConfig) *HTTPServer {
	t.Helper()

	ctx := context.Background()
	snapshots := storage.NewMemoryStore()
	bus := events.NewBus()
	logger := zerolog.Nop()

	flights := store.NewBookingStore(ctx, snapshots, bus, logger)
	users := store.NewUserStore(ctx, snapshots, logger)
	pred := predictor.New(snapshots, logger)
	sim := tracker.NewSimulator(tracker.GenerateDemoFlights(5), logger)
	exporter := export.NewService(t.TempDir(), logger)

	return NewHTTPServer(cfg, flights, users, sim, pred, exporter, logger)
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("x-api-key", testAPIKey)
	req.Header.Set("x-api-extra", testExtra)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

func TestHTTPServer_Auth(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("HealthzIsPublic", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingHeaders", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("UnknownKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
		req.Header.Set("x-api-key", "wrong")
		req.Header.Set("x-api-extra", testExtra)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("WrongExtra", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
		req.Header.Set("x-api-key", testAPIKey)
		req.Header.Set("x-api-extra", "wrong")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidHeaders", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/flights", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("RequestIDEchoed", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/flights", "")
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})
}

func TestHTTPServer_RateLimit(t *testing.T) {
	srv := newTestServerWithConfig(t, config.APIConfig{
		Enabled: true,
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			HeaderExtra:  "x-api-extra",
			APIKeys: []config.APIClientKey{
				{Key: testAPIKey, Extra: testExtra, Name: "test-client"},
			},
		},
		// Effectively no refill within the test; one token total.
		RateLimit: config.APIRateLimitConfig{RPS: 0.001, Burst: 1},
	})
	h := srv.Handler()

	rec := doRequest(t, h, http.MethodGet, "/api/v1/flights", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flights", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/flights", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	t.Run("HealthzBypassesLimiter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("LimitIsPerClientKey", func(t *testing.T) {
		srv.auth.clientsByAPIKey["other"] = config.APIClientKey{
			Key:   "other",
			Extra: "other-extra",
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
		req.Header.Set("x-api-key", "other")
		req.Header.Set("x-api-extra", "other-extra")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHTTPServer_Permissions(t *testing.T) {
	srv := newTestServer(t)
	srv.auth.clientsByAPIKey["reader"] = config.APIClientKey{
		Key:         "reader",
		Extra:       "reader-extra",
		Permissions: []string{"read:only"},
	}
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights", strings.NewReader(`{}`))
	req.Header.Set("x-api-key", "reader")
	req.Header.Set("x-api-extra", "reader-extra")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// GET stays open to every authenticated client.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
	req.Header.Set("x-api-key", "reader")
	req.Header.Set("x-api-extra", "reader-extra")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPServer_Flights(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("List", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/flights", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Flights []models.Flight `json:"flights"`
		}
		decodeResponse(t, rec, &resp)
		assert.Len(t, resp.Flights, 12)
	})

	t.Run("Search", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/flights?q=SH101", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Flights []models.Flight `json:"flights"`
		}
		decodeResponse(t, rec, &resp)
		require.Len(t, resp.Flights, 1)
		assert.Equal(t, "SH101", resp.Flights[0].FlightNumber)
	})

	t.Run("Create", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/flights",
			`{"flightNumber":"SH700","origin":"Oslo","destination":"Bergen"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created models.Flight
		decodeResponse(t, rec, &created)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, models.StatusScheduled, created.Status)
	})

	t.Run("GetByID", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/flights/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var f models.Flight
		decodeResponse(t, rec, &f)
		assert.Equal(t, "SH101", f.FlightNumber)
	})

	t.Run("GetUnknownID", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/flights/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Patch", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPatch, "/api/v1/flights/2", `{"status":"CANCELLED"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var f models.Flight
		decodeResponse(t, rec, &f)
		assert.Equal(t, models.StatusCancelled, f.Status)
		assert.Equal(t, "SH102", f.FlightNumber)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/flights", `{broken`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodDelete, "/api/v1/flights", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHTTPServer_Import(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	csv := "id,flightNumber,origin,destination\nc1,SH800,Malmo,Umea"
	rec := doRequest(t, h, http.MethodPost, "/api/v1/flights/import", csv)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count   int             `json:"count"`
		Flights []models.Flight `json:"flights"`
	}
	decodeResponse(t, rec, &resp)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Flights, 1)
	assert.Equal(t, "SH800", resp.Flights[0].FlightNumber)
}

func TestHTTPServer_Bookings(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("List", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/bookings", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Bookings []models.Booking `json:"bookings"`
		}
		decodeResponse(t, rec, &resp)
		assert.Len(t, resp.Bookings, 12)
	})

	t.Run("Create", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/bookings",
			`{"flightId":"1","passengerName":"New Passenger"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var created models.Booking
		decodeResponse(t, rec, &created)
		assert.NotEmpty(t, created.ID)
		assert.Len(t, created.BookingReference, 6)
	})

	t.Run("MissingRequiredFields", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/bookings", `{"flightId":"1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHTTPServer_CheckIn(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("Validate", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/checkin/validate", `{"name":"John Smith"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Valid  bool           `json:"valid"`
			Flight *models.Flight `json:"flight"`
		}
		decodeResponse(t, rec, &resp)
		assert.True(t, resp.Valid)
		require.NotNil(t, resp.Flight)
		assert.Equal(t, "SH101", resp.Flight.FlightNumber)
	})

	t.Run("ValidateUnknownName", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/checkin/validate", `{"name":"Nonexistent Person"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Valid bool `json:"valid"`
		}
		decodeResponse(t, rec, &resp)
		assert.False(t, resp.Valid)
	})

	t.Run("Perform", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/checkin", `{"name":"John Smith"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var result store.CheckInResult
		decodeResponse(t, rec, &result)
		assert.True(t, result.Success)
		require.NotNil(t, result.Booking)
		assert.True(t, result.Booking.HasCheckedIn)
	})

	t.Run("EmptyName", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/checkin", `{"name":"  "}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHTTPServer_Tracker(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("List", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodGet, "/api/v1/tracker/flights", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Flights []models.TrackerFlight `json:"flights"`
		}
		decodeResponse(t, rec, &resp)
		assert.Len(t, resp.Flights, 5)
	})

	t.Run("Add", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/tracker/flights",
			`{"id":"custom-1","flightNumber":"XX100","status":"EN_ROUTE"}`)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("Patch", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPatch, "/api/v1/tracker/flights/custom-1", `{"altitude":12000}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("PatchUnknown", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPatch, "/api/v1/tracker/flights/ghost", `{"altitude":12000}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Delete", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodDelete, "/api/v1/tracker/flights/custom-1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("SimulationStartStop", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/tracker/simulation", `{"action":"start","intervalMs":50}`)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doRequest(t, h, http.MethodPost, "/api/v1/tracker/simulation", `{"action":"stop"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("SimulationBadAction", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/tracker/simulation", `{"action":"pause"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHTTPServer_Predictions(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("Predict", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/predictions",
			`{"origin":"New York","destination":"London","airline":"Delta","departureDate":"2026-09-02T10:00:00Z","passengers":1}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Price int `json:"predictedPrice"`
		}
		decodeResponse(t, rec, &resp)
		assert.Greater(t, resp.Price, 0)
	})

	t.Run("PredictIncomplete", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/predictions", `{"origin":"New York"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("BookAndList", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/predictions/book",
			`{"origin":"New York","destination":"London","airline":"Delta","departureDate":"2026-09-02T10:00:00Z","price":420}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doRequest(t, h, http.MethodGet, "/api/v1/predictions/booked", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Flights []predictor.BookedFlight `json:"flights"`
		}
		decodeResponse(t, rec, &resp)
		require.Len(t, resp.Flights, 1)
		assert.Equal(t, 420, resp.Flights[0].Price)
	})
}

func TestHTTPServer_AuthAccounts(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	t.Run("Register", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/register",
			`{"name":"Alice","email":"alice@example.com"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		var user models.User
		decodeResponse(t, rec, &user)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/register",
			`{"name":"Other","email":"alice@example.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Login", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", `{"email":"alice@example.com"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("LoginUnknown", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/login", `{"email":"nobody@example.com"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Logout", func(t *testing.T) {
		rec := doRequest(t, h, http.MethodPost, "/api/v1/auth/logout", "{}")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHTTPServer_Export(t *testing.T) {
	srv := newTestServer(t)
	h := srv.Handler()

	rec := doRequest(t, h, http.MethodPost, "/api/v1/export", "{}")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Path string `json:"path"`
	}
	decodeResponse(t, rec, &resp)
	assert.Contains(t, resp.Path, ".xlsx")
}
