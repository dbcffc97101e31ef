package server

import (
	"net/http"
	"time"
)

// HealthStatus represents the overall health of the system
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component
type ComponentStatus string

const (
	ComponentStatusUp   ComponentStatus = "up"
	ComponentStatusDown ComponentStatus = "down"
)

// Health represents the complete health check response
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single system component
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms"`
}

// HandleHealth reports whether the storage directory is usable. Failure
// details go to the log, not the response.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := Health{
		Status:     HealthStatusHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    s.build.Version,
		Components: make(map[string]ComponentHealth),
	}

	storage := s.checkStorageHealth()
	health.Components["storage"] = storage

	statusCode := http.StatusOK
	if storage.Status != ComponentStatusUp {
		health.Status = HealthStatusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, health)
}

// HandleLive provides a liveness probe (is the process running?)
func (s *Server) HandleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "alive",
	})
}

// checkStorageHealth verifies the upload directory exists and accepts writes
func (s *Server) checkStorageHealth() ComponentHealth {
	start := time.Now()
	err := s.store.Check()
	latency := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		s.log.Error("storage health check failed", nil, err)
		return ComponentHealth{
			Status:    ComponentStatusDown,
			Message:   "storage unavailable",
			LatencyMs: latency,
		}
	}
	return ComponentHealth{
		Status:    ComponentStatusUp,
		Message:   "storage writable",
		LatencyMs: latency,
	}
}
