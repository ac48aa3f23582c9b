package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"drs/internal/config"
	"drs/internal/models"
	"drs/internal/store"
)

const exportPageSize = 500

// exportRecord is one catalog row in an export dump. Locations are
// included: exports are an operator tool, not a client-facing document.
type exportRecord struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Checksum    string `json:"checksum" yaml:"checksum"`
	Size        int64  `json:"size" yaml:"size"`
	Location    string `json:"location" yaml:"location"`
	MimeType    string `json:"mime_type,omitempty" yaml:"mime_type,omitempty"`
	ProjectID   string `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	DatasetID   string `json:"dataset_id,omitempty" yaml:"dataset_id,omitempty"`
	DataType    string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Public      bool   `json:"public" yaml:"public"`
	BundleID    string `json:"bundle_id,omitempty" yaml:"bundle_id,omitempty"`
	CreatedAt   string `json:"created_at" yaml:"created_at"`
}

func newExportCmd(cfg *config.Config) *cobra.Command {
	var (
		outputPath string
		format     string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the object catalog as NDJSON or YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "ndjson" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want ndjson or yaml)", format)
			}

			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			w := io.Writer(os.Stdout)
			if outputPath != "" {
				f, err := os.Create(outputPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			return exportCatalog(cmd, st, w, format)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&format, "format", "ndjson", "output format: ndjson or yaml")

	return cmd
}

func exportCatalog(cmd *cobra.Command, st *store.Store, w io.Writer, format string) error {
	var yamlEnc *yaml.Encoder
	if format == "yaml" {
		yamlEnc = yaml.NewEncoder(w)
		defer yamlEnc.Close()
	}

	for offset := 0; ; offset += exportPageSize {
		blobs, err := st.ListBlobs(cmd.Context(), exportPageSize, offset)
		if err != nil {
			return err
		}
		if len(blobs) == 0 {
			return nil
		}

		for i := range blobs {
			record := toExportRecord(&blobs[i])
			if yamlEnc != nil {
				if err := yamlEnc.Encode(record); err != nil {
					return err
				}
				continue
			}
			if err := json.NewEncoder(w).Encode(record); err != nil {
				return err
			}
		}
	}
}

func toExportRecord(blob *models.Blob) exportRecord {
	return exportRecord{
		ID:          blob.ID,
		Name:        blob.Name,
		Description: blob.Description,
		Checksum:    blob.Checksum,
		Size:        blob.Size,
		Location:    blob.Location,
		MimeType:    blob.MimeType,
		ProjectID:   blob.ProjectID,
		DatasetID:   blob.DatasetID,
		DataType:    blob.DataType,
		Public:      blob.Public,
		BundleID:    blob.BundleID,
		CreatedAt:   blob.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
