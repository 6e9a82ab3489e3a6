package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"gallery-backend/internal/models"
	"gallery-backend/internal/repository"
	"gallery-backend/internal/services"
	"gallery-backend/internal/storage"
)

// fakeVerifier stands in for the access token verifier.
type fakeVerifier struct {
	allow bool
}

func (f fakeVerifier) Verify(r *http.Request) bool {
	return f.allow
}

func newTestRouter(allow bool) (chi.Router, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	repo := repository.NewCatalogRepository(store, "metadata.json")
	svc := services.NewEventService(repo, store, "https://cdn.example.com")

	eventHandler := NewEventHandler(svc, validator.New())
	imageHandler := NewImageHandler(svc)
	return NewRouter(eventHandler, imageHandler, fakeVerifier{allow: allow}, ""), store
}

func doRequest(t *testing.T, router chi.Router, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func createEvent(t *testing.T, router chi.Router, name, date string) string {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"date":%q}`, name, date)
	rec := doRequest(t, router, http.MethodPost, "/api/events", strings.NewReader(body), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create event: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp CreateEventResponse
	decodeJSON(t, rec, &resp)
	return resp.ID
}

// multipartBody builds a multipart form with a single file part. The part's
// content type is what a browser would declare for the file.
func multipartBody(t *testing.T, filename, contentType string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	router, _ := newTestRouter(false)

	mutations := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/events"},
		{http.MethodPut, "/api/events/x"},
		{http.MethodDelete, "/api/events/x"},
		{http.MethodPost, "/api/events/x/images"},
		{http.MethodDelete, "/api/events/x/images/y"},
	}
	for _, m := range mutations {
		rec := doRequest(t, router, m.method, m.path, strings.NewReader("{}"), "application/json")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status %d, want 401", m.method, m.path, rec.Code)
		}
		var resp ErrorResponse
		decodeJSON(t, rec, &resp)
		if resp.Error != "Unauthorized" {
			t.Errorf("%s %s: error %q", m.method, m.path, resp.Error)
		}
	}
}

func TestReadRoutesBypassAuth(t *testing.T) {
	router, _ := newTestRouter(false)

	for _, path := range []string{"/api/events", "/api/events/x/images", "/api/health"} {
		rec := doRequest(t, router, http.MethodGet, path, nil, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s: status %d, want 200 without credential", path, rec.Code)
		}
	}
}

func TestEventLifecycle(t *testing.T) {
	router, _ := newTestRouter(true)

	id := createEvent(t, router, "Summer Party", "2025-06-01")

	// Listed exactly once.
	rec := doRequest(t, router, http.MethodGet, "/api/events", nil, "")
	var events []models.Event
	decodeJSON(t, rec, &events)
	if len(events) != 1 || events[0].ID != id {
		t.Fatalf("listing = %+v", events)
	}

	// Hide it: gone from the public listing, still present with all=1.
	rec = doRequest(t, router, http.MethodPut, "/api/events/"+id, strings.NewReader(`{"hidden":true}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status %d", rec.Code)
	}
	var updated models.Event
	decodeJSON(t, rec, &updated)
	if !updated.Hidden || updated.Name != "Summer Party" {
		t.Errorf("partial update result: %+v", updated)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/events", nil, "")
	decodeJSON(t, rec, &events)
	if len(events) != 0 {
		t.Error("hidden event leaked into public listing")
	}
	rec = doRequest(t, router, http.MethodGet, "/api/events?all=1", nil, "")
	decodeJSON(t, rec, &events)
	if len(events) != 1 {
		t.Error("hidden event missing from privileged listing")
	}

	// Delete and verify.
	rec = doRequest(t, router, http.MethodDelete, "/api/events/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: status %d", rec.Code)
	}
	var deleted map[string]bool
	decodeJSON(t, rec, &deleted)
	if !deleted["deleted"] {
		t.Errorf("delete response = %v", deleted)
	}

	rec = doRequest(t, router, http.MethodGet, "/api/events?all=1", nil, "")
	decodeJSON(t, rec, &events)
	if len(events) != 0 {
		t.Error("deleted event still listed")
	}
}

func TestCreateEventValidation(t *testing.T) {
	router, _ := newTestRouter(true)

	rec := doRequest(t, router, http.MethodPost, "/api/events", strings.NewReader(`{"name":"x"}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "name and date are required" {
		t.Errorf("error = %q", resp.Error)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/events", strings.NewReader("{bad json"), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad json: status %d, want 400", rec.Code)
	}
}

func TestUpdateUnknownEvent(t *testing.T) {
	router, _ := newTestRouter(true)

	rec := doRequest(t, router, http.MethodPut, "/api/events/missing", strings.NewReader(`{"name":"x"}`), "application/json")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "Event not found" {
		t.Errorf("error = %q", resp.Error)
	}

	rec = doRequest(t, router, http.MethodDelete, "/api/events/missing", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete: status %d, want 404", rec.Code)
	}
}

func TestImageUploadFlow(t *testing.T) {
	router, _ := newTestRouter(true)
	id := createEvent(t, router, "Party", "2025-06-01")

	body, contentType := multipartBody(t, "photo.jpg", "image/jpeg", []byte("fake jpeg"))
	rec := doRequest(t, router, http.MethodPost, "/api/events/"+id+"/images", body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload: status %d, body %s", rec.Code, rec.Body.String())
	}
	var uploaded UploadImageResponse
	decodeJSON(t, rec, &uploaded)
	if !strings.HasPrefix(uploaded.Key, "events/"+id+"/") {
		t.Errorf("key = %q", uploaded.Key)
	}

	// The first upload becomes the cover.
	rec = doRequest(t, router, http.MethodGet, "/api/events?all=1", nil, "")
	var events []models.Event
	decodeJSON(t, rec, &events)
	if events[0].CoverImage == nil || *events[0].CoverImage != uploaded.URL {
		t.Error("cover image not set to the first upload")
	}

	rec = doRequest(t, router, http.MethodGet, "/api/events/"+id+"/images", nil, "")
	var images []models.Image
	decodeJSON(t, rec, &images)
	if len(images) != 1 || images[0].ID != uploaded.ID {
		t.Fatalf("images = %+v", images)
	}

	// Delete the image; the cover clears with nothing left.
	rec = doRequest(t, router, http.MethodDelete, "/api/events/"+id+"/images/"+uploaded.ID, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete image: status %d", rec.Code)
	}
	rec = doRequest(t, router, http.MethodGet, "/api/events/"+id+"/images", nil, "")
	decodeJSON(t, rec, &images)
	if len(images) != 0 {
		t.Error("image still listed after delete")
	}
	rec = doRequest(t, router, http.MethodGet, "/api/events?all=1", nil, "")
	decodeJSON(t, rec, &events)
	if events[0].CoverImage != nil {
		t.Error("cover should be null after the only image is deleted")
	}
}

func TestImageUploadRejections(t *testing.T) {
	router, _ := newTestRouter(true)
	id := createEvent(t, router, "Party", "2025-06-01")

	tests := []struct {
		name        string
		filename    string
		contentType string
		wantInError string
	}{
		{"bad extension", "payload.exe", "image/jpeg", ".exe"},
		{"spoofed mime type", "photo.jpg", "text/html", "text/html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartBody(t, tt.filename, tt.contentType, []byte("x"))
			rec := doRequest(t, router, http.MethodPost, "/api/events/"+id+"/images", body, contentType)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400", rec.Code)
			}
			var resp ErrorResponse
			decodeJSON(t, rec, &resp)
			if !strings.Contains(resp.Error, tt.wantInError) {
				t.Errorf("error %q should mention %q", resp.Error, tt.wantInError)
			}
		})
	}

	// Missing file field.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.Close()
	rec := doRequest(t, router, http.MethodPost, "/api/events/"+id+"/images", &buf, w.FormDataContentType())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file: status %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "No image provided" {
		t.Errorf("error = %q", resp.Error)
	}

	// Unknown event.
	body, contentType := multipartBody(t, "photo.jpg", "image/jpeg", []byte("x"))
	rec = doRequest(t, router, http.MethodPost, "/api/events/missing/images", body, contentType)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown event: status %d, want 404", rec.Code)
	}
}

func TestUploadToArchivedEvent(t *testing.T) {
	router, _ := newTestRouter(true)
	id := createEvent(t, router, "Party", "2025-06-01")

	rec := doRequest(t, router, http.MethodPut, "/api/events/"+id, strings.NewReader(`{"archived":true}`), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatal("archive failed")
	}

	body, contentType := multipartBody(t, "photo.jpg", "image/jpeg", []byte("x"))
	rec = doRequest(t, router, http.MethodPost, "/api/events/"+id+"/images", body, contentType)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "Cannot upload to archived event" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestUnknownAPIRoute(t *testing.T) {
	router, _ := newTestRouter(true)

	rec := doRequest(t, router, http.MethodGet, "/api/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
	var resp ErrorResponse
	decodeJSON(t, rec, &resp)
	if resp.Error != "Not found" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(true)

	rec := doRequest(t, router, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var resp map[string]string
	decodeJSON(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("body = %v", resp)
	}
}
