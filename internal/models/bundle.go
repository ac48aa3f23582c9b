package models

import "time"

// Bundle is a named collection of blobs and nested bundles. Its checksum and
// size are derived from its children and must be recomputed whenever the
// membership changes; see checksum.Bundle for the derivation.
type Bundle struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	Checksum    string    `json:"checksum"`
	Size        int64     `json:"size"`
	ProjectID   string    `json:"project_id,omitempty"`
	DatasetID   string    `json:"dataset_id,omitempty"`
	DataType    string    `json:"data_type,omitempty"`
	Public      bool      `json:"public"`
	ParentID    string    `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tags returns the bundle's permission tags.
func (b *Bundle) Tags() Tags {
	return Tags{ProjectID: b.ProjectID, DatasetID: b.DatasetID, DataType: b.DataType}
}
