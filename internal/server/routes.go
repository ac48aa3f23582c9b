package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /service-info", s.handleServiceInfo)

	// Object metadata and lifecycle.
	mux.HandleFunc("GET /objects/{id}", s.handleGetObject)
	mux.HandleFunc("DELETE /objects/{id}", s.handleDeleteObject)
	mux.HandleFunc("GET /objects/{id}/access/{access_id}", s.handleObjectAccess)

	// Byte retrieval. POST is accepted so tokens can travel in the form
	// body rather than a header.
	mux.HandleFunc("GET /objects/{id}/download", s.handleDownload)
	mux.HandleFunc("POST /objects/{id}/download", s.handleDownload)

	// Search and ingestion.
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("POST /ingest", s.handleIngest)

	return s.withRequestLogging(mux)
}
