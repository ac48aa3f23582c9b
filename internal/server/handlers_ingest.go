package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"drs/internal/authz"
	"drs/internal/models"
)

// handleIngest accepts a multipart form naming either a server-local path
// or carrying uploaded bytes, and runs the deduplication pipeline on it.
// Validation happens before any side effect; the scratch temp file for an
// upload is removed on every exit path.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if !s.acquireLimiter(s.ingestLimiter, w, r, "ingest") {
		return
	}
	defer s.releaseLimiter(s.ingestLimiter)

	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(s.opts.MultipartMaxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeServiceError(w, r, badRequestCode(fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit), ErrCodeRequestTooLarge))
			return
		}
		s.writeServiceError(w, r, badRequest(fmt.Errorf("parse multipart form: %w", err)))
		return
	}

	sourcePath := r.FormValue("path")
	upload, uploadHeader, uploadErr := r.FormFile("file")
	hasUpload := uploadErr == nil
	if hasUpload {
		defer upload.Close()
	}

	if hasUpload == (sourcePath != "") {
		err := badRequestCode(fmt.Errorf("exactly one of path or file is required"), ErrCodeAmbiguousSource)
		s.writeServiceError(w, r, err)
		return
	}

	tags := models.Tags{
		ProjectID: r.FormValue("project_id"),
		DatasetID: r.FormValue("dataset_id"),
		DataType:  r.FormValue("data_type"),
	}
	public := parseFormBool(r.FormValue("public"), false)
	deduplicate := parseFormBool(r.FormValue("deduplicate"), true)

	mimeType := r.FormValue("mime_type")
	if mimeType != "" {
		parsed, err := models.ParseMimeType(mimeType)
		if err != nil {
			s.writeServiceError(w, r, badRequestCode(err, ErrCodeInvalidMimeType))
			return
		}
		mimeType = parsed
	}

	if err := s.authorizeIngest(r, tags); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	// The display name falls back to the upload's filename or the source
	// path; sanitization reduces a path to its basename.
	name := r.FormValue("name")
	if name == "" && !hasUpload {
		name = sourcePath
	}
	if hasUpload {
		tmp, err := s.objects.TempFile()
		if err != nil {
			s.writeServiceError(w, r, internalError(fmt.Errorf("create scratch file: %w", err)))
			return
		}
		defer os.Remove(tmp.Name())

		_, err = io.Copy(tmp, upload)
		tmp.Close()
		if err != nil {
			s.writeServiceError(w, r, internalError(fmt.Errorf("write scratch file: %w", err)))
			return
		}

		sourcePath = tmp.Name()
		if name == "" {
			name = uploadHeader.Filename
		}
	}

	result, err := s.objects.Ingest(ctx, IngestRequest{
		SourcePath:  sourcePath,
		Name:        name,
		Description: r.FormValue("description"),
		MimeType:    mimeType,
		Tags:        tags,
		Public:      public,
		Deduplicate: deduplicate,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, s.blobObject(result.Blob))
}

// authorizeIngest requires the ingest permission on the requested scope.
// There is no public bypass for writes.
func (s *Server) authorizeIngest(r *http.Request, tags models.Tags) error {
	ctx := r.Context()
	token := bearerToken(r)

	blanket, err := s.authz.CheckEverything(ctx, token, authz.PermissionIngestData)
	if err != nil {
		return internalError(fmt.Errorf("authorization check: %w", err))
	}
	if blanket {
		return nil
	}

	verdicts, err := s.authz.CheckObjects(ctx, token, []authz.Resource{resourceFor(tags)}, authz.PermissionIngestData)
	if err != nil {
		return internalError(fmt.Errorf("authorization check: %w", err))
	}
	if len(verdicts) == 1 && verdicts[0] {
		return nil
	}
	return forbidden(fmt.Errorf("forbidden"))
}

func parseFormBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}
