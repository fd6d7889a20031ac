package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"faceregistry/internal/database"
	"faceregistry/internal/database/mock"
	"faceregistry/internal/embedding"
	"faceregistry/internal/faces"
)

// stubExtractor satisfies faces.Extractor with a canned reply.
type stubExtractor struct {
	result *embedding.Result
	err    error
}

func (s *stubExtractor) Extract(ctx context.Context, imageData []byte) (*embedding.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func defaultStubExtractor() *stubExtractor {
	return &stubExtractor{result: &embedding.Result{
		Embedding:  []float32{0.1, 0.2, 0.3},
		Model:      "arcface",
		Pretrained: "glint360k",
		Dim:        3,
	}}
}

// withChiParams attaches chi route parameters to a request so handlers can be
// exercised without mounting the full router.
func withChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// multipartBody builds a multipart form with a single "file" part plus
// optional extra form fields.
func multipartBody(t *testing.T, filename string, content []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func createUser(t *testing.T, store *mock.Store, email string) *database.User {
	t.Helper()
	user, err := store.Create(context.Background(), database.NewUser{
		Email:    email,
		Name:     "Test User",
		Password: "hashed-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func newFacesHandler(store *mock.Store, extractor faces.Extractor) *FacesHandler {
	return NewFacesHandler(faces.NewService(store, store, extractor))
}

func assertStatusCode(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d (body: %s)", want, rec.Code, rec.Body.String())
	}
}

func assertJSONError(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse error body: %v", err)
	}
	if body["error"] != want {
		t.Errorf("expected error %q, got %q", want, body["error"])
	}
}

func parseJSONResponse(t *testing.T, rec *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
}
