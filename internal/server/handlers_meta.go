package server

import (
	"net/http"

	"drs/internal/api"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleServiceInfo serves the static capability descriptor. It is the one
// endpoint that never consults the permission gate.
func (s *Server) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	resp := api.ServiceInfo{
		ID:   "drs",
		Name: "Data Repository Service",
		Type: api.ServiceType{
			Group:    "org.ga4gh",
			Artifact: "drs",
			Version:  "1.0.0",
		},
		Description: "Metadata catalog and byte retrieval for immutable file objects",
		Version:     s.opts.Version,
		Environment: s.opts.Environment,
	}

	s.writeJSON(w, http.StatusOK, resp)
}
