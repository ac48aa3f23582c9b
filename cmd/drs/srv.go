package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"drs/internal/authz"
	"drs/internal/config"
	"drs/internal/server"
	"drs/internal/storage"
	"drs/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the DRS API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			logger := slog.Default().With("component", "server")

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			backend, err := storage.New(cfg.StorageConfig())
			if err != nil {
				return err
			}
			if s3, ok := backend.(*storage.S3); ok {
				if err := s3.EnsureBucket(cmd.Context()); err != nil {
					return fmt.Errorf("ensure bucket: %w", err)
				}
			}

			var authzSvc authz.Service = authz.AllowAll{}
			if cfg.Authz.Enabled {
				client, err := authz.NewClient(cfg.Authz.URL, logger)
				if err != nil {
					return err
				}
				authzSvc = client
			} else {
				logger.Warn("authorization disabled, all requests permitted")
			}

			srv := server.New(cfg.ListenAddr, st, backend, authzSvc, logger, server.Options{
				BaseURL:            cfg.ServiceBaseURL,
				Environment:        cfg.Environment,
				Version:            version,
				TempDir:            cfg.TempDir,
				MaxUploadBytes:     cfg.MaxUploadBytes,
				MultipartMaxMemory: cfg.MultipartMaxMemory,
			})
			return srv.ListenAndServe()
		},
	}
}
