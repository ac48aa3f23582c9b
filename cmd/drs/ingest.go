package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"drs/internal/config"
	"drs/internal/models"
	"drs/internal/server"
	"drs/internal/storage"
	"drs/internal/store"
)

func newIngestCmd(cfg *config.Config) *cobra.Command {
	var (
		name        string
		description string
		mimeType    string
		projectID   string
		datasetID   string
		dataType    string
		public      bool
		noDedup     bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <path>",
		Short: "Ingest a local file into the catalog without going through the HTTP API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("source %s: %w", path, err)
			}
			if info.IsDir() {
				return fmt.Errorf("source %s is a directory", path)
			}

			if mimeType != "" {
				if mimeType, err = models.ParseMimeType(mimeType); err != nil {
					return err
				}
			}

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

			if name == "" {
				name = path
			}

			svc := server.NewObjectService(st, backend, cfg.TempDir, slog.Default())
			result, err := svc.Ingest(cmd.Context(), server.IngestRequest{
				SourcePath:  path,
				Name:        name,
				Description: description,
				MimeType:    mimeType,
				Tags: models.Tags{
					ProjectID: projectID,
					DatasetID: datasetID,
					DataType:  dataType,
				},
				Public:      public,
				Deduplicate: !noDedup,
			})
			if err != nil {
				return err
			}

			out := map[string]any{
				"id":       result.Blob.ID,
				"name":     result.Blob.Name,
				"checksum": result.Blob.Checksum,
				"size":     result.Blob.Size,
				"location": result.Blob.Location,
				"reused":   result.Reused,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (defaults to the source filename)")
	cmd.Flags().StringVar(&description, "description", "", "object description")
	cmd.Flags().StringVar(&mimeType, "mime-type", "", "MIME type (discrete types only)")
	cmd.Flags().StringVar(&projectID, "project", "", "project tag for permission scoping")
	cmd.Flags().StringVar(&datasetID, "dataset", "", "dataset tag for permission scoping")
	cmd.Flags().StringVar(&dataType, "data-type", "", "data type tag for permission scoping")
	cmd.Flags().BoolVar(&public, "public", false, "mark the object world-readable")
	cmd.Flags().BoolVar(&noDedup, "no-dedup", false, "store bytes even when an identical object exists")

	return cmd
}
