package models

import "time"

// Tags are the permission-scoping attributes attached to a stored object.
// Any field may be empty, which means the object is not scoped on that axis.
type Tags struct {
	ProjectID string `json:"project_id,omitempty"`
	DatasetID string `json:"dataset_id,omitempty"`
	DataType  string `json:"data_type,omitempty"`
}

// Blob is an immutable stored file object. Checksum and Size are computed
// from the persisted bytes at creation and never change afterwards; Location
// may be shared between blobs that carry byte-identical content.
type Blob struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Checksum    string    `json:"checksum"`
	Size        int64     `json:"size"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	MimeType    string    `json:"mime_type,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	DatasetID   string    `json:"dataset_id,omitempty"`
	DataType    string    `json:"data_type,omitempty"`
	Public      bool      `json:"public"`
	BundleID    string    `json:"bundle_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tags returns the blob's permission tags.
func (b *Blob) Tags() Tags {
	return Tags{ProjectID: b.ProjectID, DatasetID: b.DatasetID, DataType: b.DataType}
}
