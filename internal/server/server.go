// Package server implements the DRS HTTP surface: object metadata,
// permission-gated downloads with byte-range support, ingestion with
// checksum deduplication, search, and deletion with location refcounting.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"drs/internal/authz"
	"drs/internal/storage"
	"drs/internal/store"
)

const (
	readHeaderTimeout      = 5 * time.Second
	readTimeout            = 10 * time.Minute
	idleTimeout            = 60 * time.Second
	ingestConcurrencyLimit = 4

	defaultMaxUploadBytes     int64 = 1 << 30
	defaultMultipartMaxMemory int64 = 8 << 20
)

// Options carries deployment-level settings into the server.
type Options struct {
	// BaseURL is the externally visible base URL, used to build access
	// method URLs and drs:// self URIs.
	BaseURL string
	// Environment is reported in the service-info document.
	Environment string
	// Version is the running build version.
	Version string
	// TempDir receives scratch files for uploaded content.
	TempDir string

	MaxUploadBytes     int64
	MultipartMaxMemory int64
}

// Server wraps the HTTP handlers for the DRS API. The storage backend and
// authorization service are injected at construction; handlers never reach
// into ambient state for them.
type Server struct {
	addr    string
	store   *store.Store
	backend storage.Backend
	authz   authz.Service
	objects *ObjectService
	logger  *slog.Logger
	opts    Options

	ingestLimiter chan struct{}
}

// New creates a server instance.
func New(addr string, st *store.Store, backend storage.Backend, authzSvc authz.Service, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if authzSvc == nil {
		authzSvc = authz.AllowAll{}
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.MultipartMaxMemory <= 0 {
		opts.MultipartMaxMemory = defaultMultipartMaxMemory
	}

	return &Server{
		addr:          addr,
		store:         st,
		backend:       backend,
		authz:         authzSvc,
		objects:       NewObjectService(st, backend, opts.TempDir, logger),
		logger:        logger,
		opts:          opts,
		ingestLimiter: make(chan struct{}, ingestConcurrencyLimit),
	}
}

// ListenAndServe starts the HTTP server. WriteTimeout is deliberately
// unset: downloads of large objects are bounded by client progress, not by
// a fixed wall-clock budget.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := resourceExhausted(fmt.Errorf("too many concurrent %s requests", name))
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
