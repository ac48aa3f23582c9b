package server

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"drs/internal/api"
	"drs/internal/models"
	"drs/internal/storage"
)

func (s *Server) drsHost() string {
	if u, err := url.Parse(s.opts.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return strings.TrimPrefix(strings.TrimPrefix(s.opts.BaseURL, "https://"), "http://")
}

func (s *Server) selfURI(id string) string {
	return fmt.Sprintf("drs://%s/%s", s.drsHost(), id)
}

func (s *Server) downloadURL(id string) string {
	return fmt.Sprintf("%s/objects/%s/download", strings.TrimSuffix(s.opts.BaseURL, "/"), id)
}

func formatCreatedTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05") + "Z"
}

// blobObject builds the metadata document for a leaf object. Every blob
// gets an https access method pointing back at this service; the backing
// location is additionally exposed as a file or s3 method so co-located
// clients can skip the HTTP hop.
func (s *Server) blobObject(blob *models.Blob) api.Object {
	methods := []api.AccessMethod{
		{
			Type:      "https",
			AccessURL: &api.AccessURL{URL: s.downloadURL(blob.ID)},
		},
	}
	if storage.IsS3Location(blob.Location) {
		methods = append(methods, api.AccessMethod{
			Type:      "s3",
			AccessURL: &api.AccessURL{URL: blob.Location},
		})
	} else {
		methods = append(methods, api.AccessMethod{
			Type:      "file",
			AccessURL: &api.AccessURL{URL: "file://" + blob.Location},
		})
	}

	return api.Object{
		ID:            blob.ID,
		Checksums:     []api.Checksum{{Checksum: blob.Checksum, Type: "sha-256"}},
		CreatedTime:   formatCreatedTime(blob.CreatedAt),
		Size:          blob.Size,
		SelfURI:       s.selfURI(blob.ID),
		Name:          blob.Name,
		Description:   blob.Description,
		MimeType:      blob.MimeType,
		AccessMethods: methods,
	}
}

// bundleObject builds the metadata document for a container, including its
// recursive contents tree. Bundles carry no access methods; their checksum
// is derived from child checksums, not from any byte stream.
func (s *Server) bundleObject(ctx context.Context, bundle *models.Bundle) (api.Object, error) {
	contents, err := s.bundleContents(ctx, bundle.ID)
	if err != nil {
		return api.Object{}, err
	}

	return api.Object{
		ID:          bundle.ID,
		Checksums:   []api.Checksum{{Checksum: bundle.Checksum, Type: "sha-256"}},
		CreatedTime: formatCreatedTime(bundle.CreatedAt),
		Size:        bundle.Size,
		SelfURI:     s.selfURI(bundle.ID),
		Name:        bundle.Name,
		Description: bundle.Description,
		Contents:    contents,
	}, nil
}

func (s *Server) bundleContents(ctx context.Context, bundleID string) ([]api.ContentsObject, error) {
	var contents []api.ContentsObject

	children, err := s.store.ListChildBundles(ctx, bundleID)
	if err != nil {
		return nil, storeFailure(err)
	}
	for _, child := range children {
		nested, err := s.bundleContents(ctx, child.ID)
		if err != nil {
			return nil, err
		}
		contents = append(contents, api.ContentsObject{
			Name:     child.Name,
			ID:       child.ID,
			DrsURI:   s.selfURI(child.ID),
			Contents: nested,
		})
	}

	blobs, err := s.store.ListBundleBlobs(ctx, bundleID)
	if err != nil {
		return nil, storeFailure(err)
	}
	for _, blob := range blobs {
		contents = append(contents, api.ContentsObject{
			Name:   blob.Name,
			ID:     blob.ID,
			DrsURI: s.selfURI(blob.ID),
		})
	}

	return contents, nil
}

func (s *Server) objectDocument(ctx context.Context, obj *resolvedObject) (api.Object, error) {
	if obj.bundle != nil {
		return s.bundleObject(ctx, obj.bundle)
	}
	return s.blobObject(obj.blob), nil
}
