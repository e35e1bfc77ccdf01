package handlers

import (
	"net/http"

	"github.com/upb/petclinic/utils"
)

// Version is reported by the status endpoint.
var Version = "0.1.0"

// StatusResponse is the body of GET /api/v1/status
type StatusResponse struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// StatusHandler returns application status information
func StatusHandler(environment string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, StatusResponse{
			Service:     "petclinic",
			Version:     Version,
			Environment: environment,
		})
	}
}
