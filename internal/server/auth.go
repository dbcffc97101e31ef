// auth.go - Shared-secret API key gate.
//
// A single key is configured at startup. When it is empty every request
// is admitted; otherwise X-API-Key must match it exactly.
package server

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyHeader carries the shared secret on every protected request.
const APIKeyHeader = "X-API-Key"

// AuthConfig holds the process-wide authentication settings.
type AuthConfig struct {
	// APIKey is the expected X-API-Key value. Empty disables authentication.
	APIKey string
}

// Enabled reports whether requests must present the API key.
func (a AuthConfig) Enabled() bool {
	return a.APIKey != ""
}

// Authorize admits provided when no secret is configured or when it equals
// configured. The comparison runs in constant time.
func Authorize(configured, provided string) error {
	if configured == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(provided)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// requireAPIKey rejects requests without the configured key before the
// wrapped handler touches the body.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Authorize(s.auth.APIKey, r.Header.Get(APIKeyHeader)); err != nil {
			s.metrics.RecordAuthFailure()
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
