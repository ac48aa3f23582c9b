package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"drs/internal/authz"
	"drs/internal/storage"
	"drs/internal/streaming"
)

// flushWriter flushes after every write so each chunk reaches the client
// before the next one is pulled from the backend.
type flushWriter struct {
	w http.ResponseWriter
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if err != nil {
		return n, err
	}
	if flusher, ok := fw.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return n, nil
}

// handleDownload streams object bytes, honoring an inclusive byte-range
// request. Bundles have no byte stream and cannot be downloaded.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	obj, err := s.resolveObject(ctx, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.authorizeObject(ctx, bearerToken(r), obj, authz.PermissionDownloadData, true); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if obj.bundle != nil {
		s.writeServiceError(w, r, badRequest(fmt.Errorf("object %q is a bundle and has no byte stream", id)))
		return
	}
	blob := obj.blob

	rng, err := streaming.ParseRange(r.Header.Get("Range"), blob.Size)
	if err != nil {
		var malformed *streaming.MalformedRangeError
		var unsatisfiable *streaming.UnsatisfiableRangeError
		switch {
		case errors.As(err, &malformed):
			s.writeServiceError(w, r, badRequestCode(err, ErrCodeMalformedRange))
		case errors.As(err, &unsatisfiable):
			// Report the true size so the client can retry with a valid range.
			w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", blob.Size))
			s.writeServiceError(w, r, rangeNotSatisfiable(err))
		default:
			s.writeServiceError(w, r, internalError(err))
		}
		return
	}

	reader, err := s.backend.Stream(ctx, blob.Location, rng)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotImplemented):
			s.writeServiceError(w, r, notImplemented(fmt.Errorf("range requests are not supported by this storage backend")))
		default:
			s.writeServiceError(w, r, storageFailure(fmt.Errorf("open object stream: %w", err)))
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(blob.Name)))

	status := http.StatusOK
	length := blob.Size
	if rng != nil {
		status = http.StatusPartialContent
		length = rng.Length()
		w.Header().Set("Content-Range",
			fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, blob.Size))
	}
	w.Header().Set("Content-Length", strconv.FormatInt(length, 10))
	w.WriteHeader(status)

	effective := rng
	if effective == nil && blob.Size > 0 {
		effective = &streaming.ByteRange{Start: 0, End: blob.Size - 1}
	}
	if effective == nil {
		return
	}

	n, err := streaming.Copy(ctx, flushWriter{w}, reader, effective)
	if err != nil && !errors.Is(err, io.ErrClosedPipe) {
		// Headers are gone; all we can do is log the truncation.
		s.log().Warn("download interrupted",
			"id", blob.ID, "written", n, "expected", length, "error", err)
	}
}
