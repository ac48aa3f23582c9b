package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"drs/internal/checksum"
	"drs/internal/models"
	"drs/internal/storage"
	"drs/internal/store"
)

// IngestRequest carries a validated ingestion request into the pipeline.
// SourcePath points at readable local bytes: either a caller-named
// server-side path or a scratch temp file holding an upload.
type IngestRequest struct {
	SourcePath  string
	Name        string
	Description string
	MimeType    string

	Tags   models.Tags
	Public bool

	// Deduplicate enables checksum-based reuse of already-stored bytes.
	Deduplicate bool
}

// IngestResult reports what the pipeline did with the request.
type IngestResult struct {
	Blob *models.Blob
	// Reused is true when no new bytes were written to the backend.
	Reused bool
	// Existing is true when no new metadata row was created either (the
	// request matched an existing blob exactly).
	Existing bool
}

// ObjectService implements object creation and deletion against the
// catalog and the storage backend. Construction of a Blob value itself has
// no side effects; all I/O happens here.
type ObjectService struct {
	store   *store.Store
	backend storage.Backend
	tempDir string
	logger  *slog.Logger
}

func NewObjectService(st *store.Store, backend storage.Backend, tempDir string, logger *slog.Logger) *ObjectService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ObjectService{store: st, backend: backend, tempDir: tempDir, logger: logger}
}

// TempFile creates a scratch file for uploaded bytes. Callers own cleanup.
func (svc *ObjectService) TempFile() (*os.File, error) {
	return os.CreateTemp(svc.tempDir, "drs-ingest-*")
}

// Ingest runs the deduplication pipeline for bytes at req.SourcePath.
//
// With deduplication on, a checksum match against an existing blob whose
// tags and visibility match exactly short-circuits to that blob. A
// checksum match with different tags appends a new metadata row pointing
// at the already-stored bytes. Only a checksum miss writes bytes to the
// backend. Checksum and size always come from the actual bytes, never
// from caller input.
func (svc *ObjectService) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	info, err := os.Stat(req.SourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, badRequest(fmt.Errorf("source file does not exist"))
		}
		return nil, internalError(fmt.Errorf("stat source: %w", err))
	}
	if info.IsDir() {
		return nil, badRequest(fmt.Errorf("source path is a directory"))
	}

	name := models.SanitizeName(req.Name)

	sum, err := checksum.File(req.SourcePath)
	if err != nil {
		return nil, internalError(fmt.Errorf("checksum source: %w", err))
	}

	if req.Deduplicate {
		existing, err := svc.store.FindBlobByChecksum(ctx, sum)
		if err != nil {
			return nil, storeFailure(err)
		}
		if existing != nil {
			if existing.Tags() == req.Tags && existing.Public == req.Public {
				svc.logger.Info("ingest matched existing object",
					"id", existing.ID, "checksum", sum)
				return &IngestResult{Blob: existing, Reused: true, Existing: true}, nil
			}

			// Same bytes, different visibility: append a metadata row
			// pointing at the stored location instead of writing a copy.
			blob := &models.Blob{
				ID:          uuid.NewString(),
				Location:    existing.Location,
				Checksum:    existing.Checksum,
				Size:        existing.Size,
				Name:        name,
				Description: req.Description,
				MimeType:    existing.MimeType,
				ProjectID:   req.Tags.ProjectID,
				DatasetID:   req.Tags.DatasetID,
				DataType:    req.Tags.DataType,
				Public:      req.Public,
				CreatedAt:   time.Now().UTC(),
			}
			if blob.Name == "" {
				blob.Name = existing.Name
			}
			if err := svc.store.CreateBlob(ctx, blob); err != nil {
				return nil, storeFailure(err)
			}
			svc.logger.Info("ingest reusing stored bytes",
				"id", blob.ID, "location", blob.Location, "checksum", sum)
			return &IngestResult{Blob: blob, Reused: true}, nil
		}
	}

	mimeType := req.MimeType
	if mimeType == "" {
		if detected, err := mimetype.DetectFile(req.SourcePath); err == nil {
			mimeType = detected.String()
		}
	}

	id := uuid.NewString()
	storageName := fmt.Sprintf("%s-%s", id[:12], name)

	location, err := svc.backend.Save(ctx, req.SourcePath, storageName)
	if err != nil {
		return nil, storageFailure(fmt.Errorf("save object bytes: %w", err))
	}

	blob := &models.Blob{
		ID:          id,
		Location:    location,
		Checksum:    sum,
		Size:        info.Size(),
		Name:        name,
		Description: req.Description,
		MimeType:    mimeType,
		ProjectID:   req.Tags.ProjectID,
		DatasetID:   req.Tags.DatasetID,
		DataType:    req.Tags.DataType,
		Public:      req.Public,
		CreatedAt:   time.Now().UTC(),
	}
	if err := svc.store.CreateBlob(ctx, blob); err != nil {
		return nil, storeFailure(err)
	}

	svc.logger.Info("created object",
		"id", blob.ID, "name", blob.Name, "size", blob.Size, "sha256", blob.Checksum)
	return &IngestResult{Blob: blob}, nil
}

// DeleteBlob removes a blob row and, when it holds the last reference to
// its location, the stored bytes too. Shared locations keep their bytes.
func (svc *ObjectService) DeleteBlob(ctx context.Context, blob *models.Blob) error {
	refs, err := svc.store.CountBlobsAtLocation(ctx, blob.Location)
	if err != nil {
		return storeFailure(err)
	}
	if refs <= 1 {
		if err := svc.backend.Delete(ctx, blob.Location); err != nil {
			return storageFailure(fmt.Errorf("delete object bytes: %w", err))
		}
	} else {
		svc.logger.Info("location still referenced, keeping bytes",
			"location", blob.Location, "refs", refs-1)
	}

	if err := svc.store.DeleteBlob(ctx, blob.ID); err != nil {
		return storeFailure(err)
	}

	if blob.BundleID != "" {
		if err := svc.store.RefreshBundleDerived(ctx, blob.BundleID); err != nil {
			return storeFailure(err)
		}
	}

	svc.logger.Info("deleted object", "id", blob.ID)
	return nil
}

// DeleteBundle removes a bundle and cascades to its children's rows.
// Bytes for child blobs are handled per-location by the same refcount rule.
func (svc *ObjectService) DeleteBundle(ctx context.Context, bundle *models.Bundle) error {
	blobs, err := svc.store.ListBundleBlobs(ctx, bundle.ID)
	if err != nil {
		return storeFailure(err)
	}
	for i := range blobs {
		if err := svc.DeleteBlob(ctx, &blobs[i]); err != nil {
			return err
		}
	}

	children, err := svc.store.ListChildBundles(ctx, bundle.ID)
	if err != nil {
		return storeFailure(err)
	}
	for i := range children {
		if err := svc.DeleteBundle(ctx, &children[i]); err != nil {
			return err
		}
	}

	if err := svc.store.DeleteBundle(ctx, bundle.ID); err != nil {
		return storeFailure(err)
	}
	if bundle.ParentID != "" {
		if err := svc.store.RefreshBundleDerived(ctx, bundle.ParentID); err != nil {
			return storeFailure(err)
		}
	}

	svc.logger.Info("deleted bundle", "id", bundle.ID)
	return nil
}
