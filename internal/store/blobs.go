package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"drs/internal/models"
)

const blobColumns = "id, location, checksum, size, name, description, mime_type, project_id, dataset_id, data_type, public, bundle_id, created_at"

// CreateBlob inserts one blob row. The caller supplies a fully-formed blob:
// checksum and size must already be computed from the persisted bytes.
func (s *Store) CreateBlob(ctx context.Context, blob *models.Blob) error {
	if blob == nil {
		return fmt.Errorf("blob is required")
	}
	if strings.TrimSpace(blob.ID) == "" {
		return fmt.Errorf("blob id is required")
	}
	if strings.TrimSpace(blob.Location) == "" {
		return fmt.Errorf("blob location is required")
	}
	if strings.TrimSpace(blob.Checksum) == "" {
		return fmt.Errorf("blob checksum is required")
	}
	if blob.CreatedAt.IsZero() {
		blob.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blobs (`+blobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		blob.ID, blob.Location, strings.ToLower(blob.Checksum), blob.Size,
		nullable(blob.Name), nullable(blob.Description), nullable(blob.MimeType),
		nullable(blob.ProjectID), nullable(blob.DatasetID), nullable(blob.DataType),
		blob.Public, nullable(blob.BundleID), dbFormatTime(blob.CreatedAt),
	)
	return err
}

// GetBlob returns one blob by id, or nil when absent.
func (s *Store) GetBlob(ctx context.Context, id string) (*models.Blob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+blobColumns+` FROM blobs WHERE id = ?`, id)
	return scanBlob(row)
}

// FindBlobByChecksum returns the oldest blob carrying the digest, or nil.
// Deduplication is checksum-only; permission tags are compared by the caller
// after a match.
func (s *Store) FindBlobByChecksum(ctx context.Context, checksum string) (*models.Blob, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+blobColumns+` FROM blobs WHERE checksum = ? ORDER BY created_at ASC, id ASC LIMIT 1`,
		strings.ToLower(strings.TrimSpace(checksum)))
	return scanBlob(row)
}

// CountBlobsAtLocation counts how many blob rows point at the same stored
// bytes. Used to decide whether deleting a blob may also delete its bytes.
func (s *Store) CountBlobsAtLocation(ctx context.Context, location string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blobs WHERE location = ?", location).Scan(&count)
	return count, err
}

// DeleteBlob deletes one blob row.
func (s *Store) DeleteBlob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM blobs WHERE id = ?", id)
	return err
}

// SearchFilter selects blobs by exactly one of its fields.
type SearchFilter struct {
	// Name matches the display name exactly.
	Name string
	// FuzzyName matches a substring of the display name.
	FuzzyName string
	// Query matches a substring of name, id, checksum or description.
	Query string
}

// SearchBlobs runs a catalog search. Validation that exactly one filter
// field is set belongs to the caller.
func (s *Store) SearchBlobs(ctx context.Context, filter SearchFilter) ([]models.Blob, error) {
	var (
		where string
		args  []any
	)
	switch {
	case filter.Name != "":
		where = "name = ?"
		args = []any{filter.Name}
	case filter.FuzzyName != "":
		where = "name LIKE ?"
		args = []any{"%" + filter.FuzzyName + "%"}
	case filter.Query != "":
		where = "(name LIKE ? OR id LIKE ? OR checksum LIKE ? OR description LIKE ?)"
		pattern := "%" + filter.Query + "%"
		args = []any{pattern, pattern, pattern, pattern}
	default:
		return nil, fmt.Errorf("search filter is required")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blobColumns+` FROM blobs WHERE `+where+` ORDER BY created_at DESC, id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBlobs(rows)
}

// ListBlobs pages through the whole catalog in creation order.
func (s *Store) ListBlobs(ctx context.Context, limit, offset int) ([]models.Blob, error) {
	query := `SELECT ` + blobColumns + ` FROM blobs ORDER BY created_at ASC, id ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBlobs(rows)
}

// ListBundleBlobs lists the direct blob children of a bundle.
func (s *Store) ListBundleBlobs(ctx context.Context, bundleID string) ([]models.Blob, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+blobColumns+` FROM blobs WHERE bundle_id = ? ORDER BY name ASC, id ASC`, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBlobs(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlob(row rowScanner) (*models.Blob, error) {
	var (
		blob                            models.Blob
		name, description, mimeType    sql.NullString
		projectID, datasetID, dataType sql.NullString
		bundleID                       sql.NullString
		createdAt                      string
	)
	err := row.Scan(
		&blob.ID, &blob.Location, &blob.Checksum, &blob.Size,
		&name, &description, &mimeType,
		&projectID, &datasetID, &dataType,
		&blob.Public, &bundleID, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	blob.Name = name.String
	blob.Description = description.String
	blob.MimeType = mimeType.String
	blob.ProjectID = projectID.String
	blob.DatasetID = datasetID.String
	blob.DataType = dataType.String
	blob.BundleID = bundleID.String
	blob.CreatedAt = dbParseTime(createdAt)
	return &blob, nil
}

func collectBlobs(rows *sql.Rows) ([]models.Blob, error) {
	blobs := []models.Blob{}
	for rows.Next() {
		blob, err := scanBlob(rows)
		if err != nil {
			return nil, err
		}
		if blob == nil {
			continue
		}
		blobs = append(blobs, *blob)
	}
	return blobs, rows.Err()
}

func nullable(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
