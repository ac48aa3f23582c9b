package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"drs/internal/checksum"
	"drs/internal/models"
)

const bundleColumns = "id, name, description, checksum, size, project_id, dataset_id, data_type, public, parent_id, created_at"

// CreateBundle inserts one bundle row. Checksum and size start at their
// empty-membership values and are maintained by RefreshBundleDerived.
func (s *Store) CreateBundle(ctx context.Context, bundle *models.Bundle) error {
	if bundle == nil {
		return fmt.Errorf("bundle is required")
	}
	if strings.TrimSpace(bundle.ID) == "" {
		return fmt.Errorf("bundle id is required")
	}
	if bundle.CreatedAt.IsZero() {
		bundle.CreatedAt = time.Now().UTC()
	}
	if bundle.Checksum == "" {
		bundle.Checksum = checksum.Bundle(nil)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bundles (`+bundleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		bundle.ID, nullable(bundle.Name), nullable(bundle.Description),
		bundle.Checksum, bundle.Size,
		nullable(bundle.ProjectID), nullable(bundle.DatasetID), nullable(bundle.DataType),
		bundle.Public, nullable(bundle.ParentID), dbFormatTime(bundle.CreatedAt),
	)
	return err
}

// GetBundle returns one bundle by id, or nil when absent.
func (s *Store) GetBundle(ctx context.Context, id string) (*models.Bundle, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bundleColumns+` FROM bundles WHERE id = ?`, id)
	return scanBundle(row)
}

// DeleteBundle deletes one bundle row; children cascade via foreign keys.
func (s *Store) DeleteBundle(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM bundles WHERE id = ?", id)
	return err
}

// ListChildBundles lists the direct bundle children of a bundle.
func (s *Store) ListChildBundles(ctx context.Context, parentID string) ([]models.Bundle, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bundleColumns+` FROM bundles WHERE parent_id = ? ORDER BY name ASC, id ASC`, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bundles := []models.Bundle{}
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		if bundle == nil {
			continue
		}
		bundles = append(bundles, *bundle)
	}
	return bundles, rows.Err()
}

// RefreshBundleDerived recomputes a bundle's checksum and size from its
// current children and walks up the parent chain so every ancestor stays
// consistent. Must be called after any membership change.
func (s *Store) RefreshBundleDerived(ctx context.Context, id string) error {
	for id != "" {
		bundle, err := s.GetBundle(ctx, id)
		if err != nil {
			return err
		}
		if bundle == nil {
			return fmt.Errorf("bundle %s not found", id)
		}

		blobs, err := s.ListBundleBlobs(ctx, id)
		if err != nil {
			return err
		}
		children, err := s.ListChildBundles(ctx, id)
		if err != nil {
			return err
		}

		sums := make([]string, 0, len(blobs)+len(children))
		var size int64
		for _, blob := range blobs {
			sums = append(sums, blob.Checksum)
			size += blob.Size
		}
		for _, child := range children {
			sums = append(sums, child.Checksum)
			size += child.Size
		}

		if _, err := s.db.ExecContext(ctx,
			"UPDATE bundles SET checksum = ?, size = ? WHERE id = ?",
			checksum.Bundle(sums), size, id,
		); err != nil {
			return err
		}

		id = bundle.ParentID
	}
	return nil
}

func scanBundle(row rowScanner) (*models.Bundle, error) {
	var (
		bundle                         models.Bundle
		name, description              sql.NullString
		projectID, datasetID, dataType sql.NullString
		parentID                       sql.NullString
		createdAt                      string
	)
	err := row.Scan(
		&bundle.ID, &name, &description, &bundle.Checksum, &bundle.Size,
		&projectID, &datasetID, &dataType,
		&bundle.Public, &parentID, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bundle.Name = name.String
	bundle.Description = description.String
	bundle.ProjectID = projectID.String
	bundle.DatasetID = datasetID.String
	bundle.DataType = dataType.String
	bundle.ParentID = parentID.String
	bundle.CreatedAt = dbParseTime(createdAt)
	return &bundle, nil
}
