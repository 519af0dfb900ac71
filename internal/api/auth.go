package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"skyhub/internal/config"
)

// HTTPAuth guards the API with static client keys and a per-client rate
// limiter. Every request carries two headers: the api key identifies the
// client, the extra value is the shared secret checked in constant time.
type HTTPAuth struct {
	cfg config.APIConfig

	clientsByAPIKey map[string]config.APIClientKey
	limiter         *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}

	return &HTTPAuth{
		cfg:             cfg,
		clientsByAPIKey: m,
		limiter:         newRateLimiter(cfg),
	}
}

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	permWriteFlights      = "write:flights"
	permWriteBookings     = "write:bookings"
	permCheckIn           = "checkin"
	clientKeyUnknown      = "unknown"
)

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled {
			if !a.checkAuth(w, r) {
				return
			}
		}
		if !a.checkRateLimit(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) checkAuth(w http.ResponseWriter, r *http.Request) bool {
	apiKeyHeader := strings.TrimSpace(a.cfg.Auth.HeaderAPIKey)
	if apiKeyHeader == "" {
		apiKeyHeader = apiKeyHeaderDefault
	}

	extraHeader := strings.TrimSpace(a.cfg.Auth.HeaderExtra)
	if extraHeader == "" {
		extraHeader = apiExtraHeaderDefault
	}

	apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader))
	extra := strings.TrimSpace(r.Header.Get(extraHeader))
	if apiKey == "" || extra == "" {
		writeError(w, http.StatusUnauthorized, "missing api key headers")
		return false
	}

	client, ok := a.clientsByAPIKey[apiKey]
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return false
	}

	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid extra header")
		return false
	}

	if !a.checkPermissions(client, r) {
		writeError(w, http.StatusForbidden, "permission denied")
		return false
	}

	return true
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) bool {
	required := requiredPermission(r)
	if required == "" {
		return true
	}

	// If permissions list is empty, treat as allow-all.
	if len(client.Permissions) == 0 {
		return true
	}

	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return true
		}
	}
	return false
}

func requiredPermission(r *http.Request) string {
	if r.Method == http.MethodGet {
		return ""
	}

	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/checkin"):
		return permCheckIn
	case strings.HasPrefix(path, "/api/v1/bookings"):
		return permWriteBookings
	case strings.HasPrefix(path, "/api/v1/flights"), strings.HasPrefix(path, "/api/v1/tracker"):
		return permWriteFlights
	default:
		return ""
	}
}

func (a *HTTPAuth) checkRateLimit(w http.ResponseWriter, r *http.Request) bool {
	if a.cfg.RateLimit.RPS <= 0 {
		return true
	}

	key := a.clientKey(r)
	lim := a.limiter.getLimiter(key)
	if !lim.Allow() {
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
		return false
	}
	return true
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	apiKeyHeader := strings.TrimSpace(a.cfg.Auth.HeaderAPIKey)
	if apiKeyHeader == "" {
		apiKeyHeader = apiKeyHeaderDefault
	}
	if apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader)); apiKey != "" {
		return apiKey
	}

	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return clientKeyUnknown
}
