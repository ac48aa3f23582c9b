package server

import (
	"fmt"
	"net/http"

	"drs/internal/api"
	"drs/internal/authz"
	"drs/internal/models"
	"drs/internal/store"
)

// handleSearch looks up blobs by exact name, name substring, or a
// multi-field substring query. Results are filtered down to what the
// caller may see; an empty result never distinguishes "no match" from
// "no permission".
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := store.SearchFilter{
		Name:      query.Get("name"),
		FuzzyName: query.Get("fuzzy_name"),
		Query:     query.Get("q"),
	}

	set := 0
	for _, v := range []string{filter.Name, filter.FuzzyName, filter.Query} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		err := badRequestCode(fmt.Errorf("exactly one of name, fuzzy_name or q is required"), ErrCodeInvalidSearch)
		s.writeServiceError(w, r, err)
		return
	}

	blobs, err := s.store.SearchBlobs(ctx, filter)
	if err != nil {
		s.writeServiceError(w, r, storeFailure(err))
		return
	}

	visible, err := s.filterVisible(r, blobs)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	results := make([]api.Object, 0, len(visible))
	for i := range visible {
		results = append(results, s.blobObject(&visible[i]))
	}
	s.writeJSON(w, http.StatusOK, results)
}

// filterVisible keeps the blobs the caller is authorized to query: all of
// them under a blanket permission, otherwise those with a positive
// per-resource verdict or marked public.
func (s *Server) filterVisible(r *http.Request, blobs []models.Blob) ([]models.Blob, error) {
	ctx := r.Context()
	token := bearerToken(r)

	blanket, err := s.authz.CheckEverything(ctx, token, authz.PermissionQueryData)
	if err != nil {
		return nil, internalError(fmt.Errorf("authorization check: %w", err))
	}
	if blanket {
		return blobs, nil
	}
	if len(blobs) == 0 {
		return nil, nil
	}

	resources := make([]authz.Resource, len(blobs))
	for i, blob := range blobs {
		resources[i] = resourceFor(blob.Tags())
	}
	verdicts, err := s.authz.CheckObjects(ctx, token, resources, authz.PermissionQueryData)
	if err != nil {
		return nil, internalError(fmt.Errorf("authorization check: %w", err))
	}
	if len(verdicts) != len(blobs) {
		return nil, internalError(fmt.Errorf("authorization returned %d verdicts for %d resources", len(verdicts), len(blobs)))
	}

	var visible []models.Blob
	for i := range blobs {
		if verdicts[i] || blobs[i].Public {
			visible = append(visible, blobs[i])
		}
	}
	return visible, nil
}
