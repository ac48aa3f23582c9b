package server

import (
	"fmt"
	"net/http"

	"drs/internal/authz"
)

// handleGetObject serves the metadata document for a blob or bundle.
func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	obj, err := s.resolveObject(ctx, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.authorizeObject(ctx, bearerToken(r), obj, authz.PermissionQueryData, true); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	doc, err := s.objectDocument(ctx, obj)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}

// handleObjectAccess always responds 404: access IDs are never issued,
// every access method carries an inline access_url instead.
func (s *Server) handleObjectAccess(w http.ResponseWriter, r *http.Request) {
	err := notFoundCode(fmt.Errorf("no access ID %q for object %q", r.PathValue("access_id"), r.PathValue("id")), ErrCodeAccessIDNotFound)
	s.writeServiceError(w, r, err)
}

func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	obj, err := s.resolveObject(ctx, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	// Public visibility grants reads, never deletion.
	if err := s.authorizeObject(ctx, bearerToken(r), obj, authz.PermissionDeleteData, false); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if obj.bundle != nil {
		err = s.objects.DeleteBundle(ctx, obj.bundle)
	} else {
		err = s.objects.DeleteBlob(ctx, obj.blob)
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
