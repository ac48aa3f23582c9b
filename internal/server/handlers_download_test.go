package server

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"drs/internal/authz"
	"drs/internal/storage"
	"drs/internal/streaming"
)

// rangelessBackend serves whole objects only, like an object store whose
// driver has no sub-range support.
type rangelessBackend struct {
	content []byte
}

func (b *rangelessBackend) Save(_ context.Context, _, targetName string) (string, error) {
	return "s3://test-bucket/" + targetName, nil
}

func (b *rangelessBackend) Delete(context.Context, string) error {
	return nil
}

func (b *rangelessBackend) Stream(_ context.Context, _ string, rng *streaming.ByteRange) (io.ReadCloser, error) {
	if rng != nil {
		return nil, storage.ErrNotImplemented
	}
	return io.NopCloser(bytes.NewReader(b.content)), nil
}

func testContent(n int) []byte {
	content := make([]byte, n)
	for i := range content {
		content[i] = byte(i % 251)
	}
	return content
}

func TestDownload_WholeObject(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(2455)
	obj := ingestUpload(t, srv, "sample.bin", content, nil)

	req := httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != "2455" {
		t.Fatalf("expected Content-Length 2455, got %q", got)
	}
	if got := w.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Fatalf("expected Accept-Ranges bytes, got %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Fatal("downloaded bytes differ from ingested bytes")
	}
}

func TestDownload_OpenEndedRange(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(2455)
	obj := ingestUpload(t, srv, "sample.bin", content, nil)

	req := httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
	req.Header.Set("Range", "bytes=0-")
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != "2455" {
		t.Fatalf("expected Content-Length 2455, got %q", got)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 0-2454/2455" {
		t.Fatalf("unexpected Content-Range: %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Fatal("downloaded bytes differ from ingested bytes")
	}
}

func TestDownload_SubRange(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(2455)
	obj := ingestUpload(t, srv, "sample.bin", content, nil)

	req := httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
	req.Header.Set("Range", "bytes=100-199")
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusPartialContent {
		t.Fatalf("expected 206, got %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Length"); got != "100" {
		t.Fatalf("expected Content-Length 100, got %q", got)
	}
	if got := w.Header().Get("Content-Range"); got != "bytes 100-199/2455" {
		t.Fatalf("unexpected Content-Range: %q", got)
	}
	if !bytes.Equal(w.Body.Bytes(), content[100:200]) {
		t.Fatal("range bytes differ from expected slice")
	}
}

func TestDownload_MalformedRange(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	obj := ingestUpload(t, srv, "sample.bin", testContent(64), nil)

	for _, header := range []string{"bytes", "items=0-10", "bytes=abc-10", "bytes=-5-10"} {
		req := httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
		req.Header.Set("Range", header)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("header %q: expected 400, got %d", header, w.Code)
		}
		if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeMalformedRange {
			t.Fatalf("header %q: expected error_code %d, got %d", header, ErrCodeMalformedRange, errResp.ErrorCode)
		}
	}
}

func TestDownload_UnsatisfiableRange(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	obj := ingestUpload(t, srv, "sample.bin", testContent(64), nil)

	req := httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
	req.Header.Set("Range", "bytes=0-100")
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Fatalf("expected 416, got %d (%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Range"); got != "bytes */64" {
		t.Fatalf("expected Content-Range with true size, got %q", got)
	}
	if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeRangeNotSatisfiable {
		t.Fatalf("expected error_code %d, got %d", ErrCodeRangeNotSatisfiable, errResp.ErrorCode)
	}
}

func TestDownload_SubRangeNotSupportedByBackend(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(64)
	obj := ingestUpload(t, srv, "sample.bin", content, nil)
	srv.backend = &rangelessBackend{content: content}

	req := httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
	req.Header.Set("Range", "bytes=0-10")
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d (%s)", w.Code, w.Body.String())
	}
	if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeNotImplemented {
		t.Fatalf("expected error_code %d, got %d", ErrCodeNotImplemented, errResp.ErrorCode)
	}

	// A whole-object request against the same backend still streams.
	req = httptest.NewRequest(http.MethodGet, "/objects/"+obj.ID+"/download", nil)
	w = httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 without a range, got %d (%s)", w.Code, w.Body.String())
	}
	if !bytes.Equal(w.Body.Bytes(), content) {
		t.Fatal("downloaded bytes differ from ingested bytes")
	}
}

func TestDownload_BundleHasNoByteStream(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	bundle := seedBundle(t, srv, "b1", "")

	req := httptest.NewRequest(http.MethodGet, "/objects/"+bundle.ID+"/download", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}
