package core

import (
	"net/http"
)

// healthResponse is the JSON response body for the health check endpoint.
type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// HandleHealth reports process liveness. The service has no critical external
// dependencies to probe: delivery failures are per-event concerns, not
// liveness ones. This endpoint is public and mounted at GET /health.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: s.Config.Service,
	})
}
