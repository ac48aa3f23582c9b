package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"drs/internal/api"
	"drs/internal/authz"
	"drs/internal/storage"
	"drs/internal/store"
)

const testBaseURL = "http://drs.example.org"

func newTestServer(t *testing.T, authzSvc authz.Service) *Server {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "drs-test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})

	backend, err := storage.New(storage.Config{Kind: storage.KindLocal, DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("open storage backend: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New("127.0.0.1:0", st, backend, authzSvc, logger, Options{
		BaseURL: testBaseURL,
		Version: "test",
		TempDir: t.TempDir(),
	})
}

// stubAuthz answers every blanket query with everything and every
// per-resource query with verdict.
type stubAuthz struct {
	everything bool
	verdict    bool
}

func (a stubAuthz) CheckEverything(context.Context, string, string) (bool, error) {
	return a.everything, nil
}

func (a stubAuthz) CheckObjects(_ context.Context, _ string, resources []authz.Resource, _ string) ([]bool, error) {
	verdicts := make([]bool, len(resources))
	for i := range verdicts {
		verdicts[i] = a.verdict
	}
	return verdicts, nil
}

// ingestUpload posts content as a multipart upload and returns the created
// object document.
func ingestUpload(t *testing.T, srv *Server, filename string, content []byte, fields map[string]string) api.Object {
	t.Helper()

	w := doIngestUpload(t, srv, filename, content, fields)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", w.Code, w.Body.String())
	}

	var obj api.Object
	if err := json.Unmarshal(w.Body.Bytes(), &obj); err != nil {
		t.Fatalf("decode ingest response: %v", err)
	}
	if obj.ID == "" {
		t.Fatal("expected created object id")
	}
	return obj
}

func doIngestUpload(t *testing.T, srv *Server, filename string, content []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)
	return w
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return errResp
}
