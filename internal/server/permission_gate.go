package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"drs/internal/authz"
	"drs/internal/models"
)

// resolvedObject is the result of looking an ID up across both object
// namespaces. Exactly one of blob/bundle is set when the ID resolves.
type resolvedObject struct {
	blob   *models.Blob
	bundle *models.Bundle
}

func (o *resolvedObject) exists() bool {
	return o != nil && (o.blob != nil || o.bundle != nil)
}

func (o *resolvedObject) tags() models.Tags {
	switch {
	case o.bundle != nil:
		return o.bundle.Tags()
	case o.blob != nil:
		return o.blob.Tags()
	default:
		return models.Tags{}
	}
}

func (o *resolvedObject) public() bool {
	switch {
	case o.bundle != nil:
		return o.bundle.Public
	case o.blob != nil:
		return o.blob.Public
	default:
		return false
	}
}

// resolveObject checks the bundle namespace first, then blobs. A miss in
// both returns an empty resolvedObject, not an error; existence handling
// belongs to the authorization step.
func (s *Server) resolveObject(ctx context.Context, id string) (*resolvedObject, error) {
	bundle, err := s.store.GetBundle(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	if bundle != nil {
		return &resolvedObject{bundle: bundle}, nil
	}

	blob, err := s.store.GetBlob(ctx, id)
	if err != nil {
		return nil, storeFailure(err)
	}
	return &resolvedObject{blob: blob}, nil
}

// bearerToken extracts the caller's token from the Authorization header,
// falling back to the form field "token" on POST requests.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if r.Method == http.MethodPost {
		return r.PostFormValue("token")
	}
	return ""
}

func resourceFor(tags models.Tags) authz.Resource {
	return authz.Resource{
		Project:  tags.ProjectID,
		Dataset:  tags.DatasetID,
		DataType: tags.DataType,
	}
}

// authorizeObject runs the existence-masking state machine for a resolved
// (possibly absent) object:
//
//  1. ask for the blanket permission over everything;
//  2. absent object: blanket holders get NotFound, everyone else gets
//     Forbidden so the response shape never reveals whether the ID exists;
//  3. present object: blanket holders are authorized outright, otherwise a
//     per-resource check decides, with public objects always readable when
//     allowPublic is set.
//
// allowPublic is false for destructive permissions: a public object is
// world-readable, not world-deletable.
func (s *Server) authorizeObject(ctx context.Context, token string, obj *resolvedObject, permission string, allowPublic bool) error {
	blanket, err := s.authz.CheckEverything(ctx, token, permission)
	if err != nil {
		return internalError(fmt.Errorf("authorization check: %w", err))
	}

	if !obj.exists() {
		if !blanket {
			return forbidden(fmt.Errorf("forbidden"))
		}
		return notFound(fmt.Errorf("object not found"))
	}

	if blanket {
		return nil
	}

	verdicts, err := s.authz.CheckObjects(ctx, token, []authz.Resource{resourceFor(obj.tags())}, permission)
	if err != nil {
		return internalError(fmt.Errorf("authorization check: %w", err))
	}
	if len(verdicts) == 1 && verdicts[0] {
		return nil
	}
	if allowPublic && obj.public() {
		return nil
	}
	return forbidden(fmt.Errorf("forbidden"))
}
