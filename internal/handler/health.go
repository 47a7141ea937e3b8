package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	Generation string `json:"generation"`
	Search     string `json:"search"`
}

// HealthHandler reports collaborator configuration state. The collaborators
// are plain HTTP endpoints, so readiness only checks that they are
// configured; it never makes a network call on the probe path.
type HealthHandler struct {
	ollamaURL      string
	openLibraryURL string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(ollamaURL, openLibraryURL string) *HealthHandler {
	return &HealthHandler{ollamaURL: ollamaURL, openLibraryURL: openLibraryURL}
}

// HandleHealth returns the health status of the service
// Used for liveness probes
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	generation := "configured"
	if h.ollamaURL == "" {
		generation = "unconfigured"
	}
	search := "configured"
	if h.openLibraryURL == "" {
		search = "unconfigured"
	}

	status := "healthy"
	if generation != "configured" || search != "configured" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Generation: generation,
		Search:     search,
	})
}

// HandleReadiness returns whether the service is ready to accept traffic -
// stricter than health
func (h *HealthHandler) HandleReadiness(c *gin.Context) {
	if h.ollamaURL == "" || h.openLibraryURL == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "collaborator_not_configured",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
