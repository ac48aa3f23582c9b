package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"drs/internal/api"
	"drs/internal/authz"
)

func TestIngest_Upload(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(2455)

	obj := ingestUpload(t, srv, "reads.fastq", content, map[string]string{
		"project_id": "p1",
		"dataset_id": "d1",
	})

	wantSum := sha256.Sum256(content)
	if obj.Checksums[0].Checksum != hex.EncodeToString(wantSum[:]) {
		t.Fatalf("unexpected checksum: %q", obj.Checksums[0].Checksum)
	}
	if obj.Size != 2455 {
		t.Fatalf("expected size 2455, got %d", obj.Size)
	}
	if obj.Name != "reads.fastq" {
		t.Fatalf("unexpected name: %q", obj.Name)
	}

	blob, err := srv.store.GetBlob(context.Background(), obj.ID)
	if err != nil || blob == nil {
		t.Fatalf("load created blob: %v", err)
	}
	stored, err := os.ReadFile(blob.Location)
	if err != nil {
		t.Fatalf("read stored bytes: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Fatal("stored bytes differ from upload")
	}
	base := filepath.Base(blob.Location)
	if base != obj.ID[:12]+"-reads.fastq" {
		t.Fatalf("unexpected storage filename: %q", base)
	}
}

func TestIngest_ServerLocalPath(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(300)
	source := filepath.Join(t.TempDir(), "local input.txt")
	if err := os.WriteFile(source, content, 0o600); err != nil {
		t.Fatalf("write source file: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("path", source); err != nil {
		t.Fatalf("write path field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	var obj api.Object
	if err := json.Unmarshal(w.Body.Bytes(), &obj); err != nil {
		t.Fatalf("decode ingest response: %v", err)
	}
	// With no name field the display name comes from the source path,
	// sanitized down to its basename.
	if obj.Name != "local_input.txt" {
		t.Fatalf("expected name copied from source path, got %q", obj.Name)
	}

	// The source file is the caller's; ingest copies it, never moves it.
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source file should remain: %v", err)
	}
}

func TestIngest_ExactMatchReturnsExistingObject(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	content := testContent(100)
	tags := map[string]string{"project_id": "p1", "dataset_id": "d1", "data_type": "variant"}

	first := ingestUpload(t, srv, "a.bin", content, tags)
	second := ingestUpload(t, srv, "b.bin", content, tags)

	if first.ID != second.ID {
		t.Fatalf("expected exact-match dedup to return the same object, got %q and %q", first.ID, second.ID)
	}
}

func TestIngest_DivergentTagsShareBytes(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	ctx := context.Background()
	content := testContent(100)

	first := ingestUpload(t, srv, "a.bin", content, map[string]string{"project_id": "p1"})
	second := ingestUpload(t, srv, "a.bin", content, map[string]string{"project_id": "p2"})

	if first.ID == second.ID {
		t.Fatal("expected a new metadata row for divergent tags")
	}

	firstBlob, _ := srv.store.GetBlob(ctx, first.ID)
	secondBlob, _ := srv.store.GetBlob(ctx, second.ID)
	if firstBlob == nil || secondBlob == nil {
		t.Fatal("expected both blobs persisted")
	}
	if firstBlob.Location != secondBlob.Location {
		t.Fatalf("expected shared bytes, got %q and %q", firstBlob.Location, secondBlob.Location)
	}
	if secondBlob.ProjectID != "p2" {
		t.Fatalf("expected new tags on the copy, got %q", secondBlob.ProjectID)
	}
}

func TestIngest_DeduplicateDisabled(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})
	ctx := context.Background()
	content := testContent(100)

	first := ingestUpload(t, srv, "a.bin", content, nil)
	second := ingestUpload(t, srv, "a.bin", content, map[string]string{"deduplicate": "false"})

	firstBlob, _ := srv.store.GetBlob(ctx, first.ID)
	secondBlob, _ := srv.store.GetBlob(ctx, second.ID)
	if firstBlob == nil || secondBlob == nil {
		t.Fatal("expected both blobs persisted")
	}
	if firstBlob.Location == secondBlob.Location {
		t.Fatal("expected independent bytes with deduplication disabled")
	}
}

func TestIngest_RequiresExactlyOneSource(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})

	t.Run("neither path nor file", func(t *testing.T) {
		w := doIngestUpload(t, srv, "", nil, map[string]string{"project_id": "p1"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeAmbiguousSource {
			t.Fatalf("expected error_code %d, got %d", ErrCodeAmbiguousSource, errResp.ErrorCode)
		}
	})

	t.Run("both path and file", func(t *testing.T) {
		w := doIngestUpload(t, srv, "a.bin", []byte("x"), map[string]string{"path": "/tmp/somewhere"})
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
		if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeAmbiguousSource {
			t.Fatalf("expected error_code %d, got %d", ErrCodeAmbiguousSource, errResp.ErrorCode)
		}
	})
}

func TestIngest_InvalidMimeType(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})

	w := doIngestUpload(t, srv, "a.bin", []byte("x"), map[string]string{"mime_type": "multipart/form-data"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
	if errResp := decodeErrorResponse(t, w); errResp.ErrorCode != ErrCodeInvalidMimeType {
		t.Fatalf("expected error_code %d, got %d", ErrCodeInvalidMimeType, errResp.ErrorCode)
	}
}

func TestIngest_MissingSourcePath(t *testing.T) {
	srv := newTestServer(t, authz.AllowAll{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("path", filepath.Join(t.TempDir(), "missing.bin")); err != nil {
		t.Fatalf("write path field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", w.Code, w.Body.String())
	}
}

func TestIngest_ForbiddenWithoutPermission(t *testing.T) {
	srv := newTestServer(t, stubAuthz{everything: false, verdict: false})

	w := doIngestUpload(t, srv, "a.bin", []byte("x"), map[string]string{"project_id": "p1"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d (%s)", w.Code, w.Body.String())
	}
}
