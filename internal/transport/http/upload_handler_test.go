package http

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"classctf-service/internal/app"
	"classctf-service/internal/domain"
	"classctf-service/internal/infra/memory"
	"classctf-service/internal/infra/storage"
)

func newUploadFixture(t *testing.T) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	store.PutProfile(domain.Profile{ID: "teacher-1", Email: "t1@school.test", Role: domain.RoleTeacher})

	images, err := storage.NewLocalImageStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("image store: %v", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	cache := memory.NewChallengeCache(store, time.Minute)
	api := NewAPI(Deps{
		Play:        app.NewPlayService(store, store, store, store, store, memory.NewRateLimiter(10, time.Minute), cache, app.NewBroadcaster(nil, log), log),
		Games:       app.NewGameService(store, store, cache),
		Library:     app.NewLibraryService(store, store, store, store, log),
		Admin:       app.NewAdminService(store, store),
		Reflections: store,
		Profiles:    store,
		Images:      images,
		JWTSecret:   testSecret,
		Log:         log,
	})
	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)
	return server
}

func multipartImage(t *testing.T, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="shot.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	server := newUploadFixture(t)

	body, formType := multipartImage(t, "image/png", []byte("not-really-a-png"))
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/uploads/images", body)
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "teacher-1"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "/uploads/") || !strings.Contains(string(raw), ".png") {
		t.Fatalf("body = %s", raw)
	}
}

func TestUploadImageRejectsUnknownType(t *testing.T) {
	server := newUploadFixture(t)

	body, formType := multipartImage(t, "text/plain", []byte("hello"))
	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/uploads/images", body)
	req.Header.Set("Content-Type", formType)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "teacher-1"))

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
