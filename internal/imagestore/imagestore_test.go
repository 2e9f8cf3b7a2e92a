package imagestore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *Cloudinary {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewCloudinary(CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key-123",
		APISecret: "secret-456",
		Folder:    "/leadervibe/",
	})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}
	client.SetUploadPrefix(srv.URL + "/")
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestNewCloudinaryRequiresCredentials(t *testing.T) {
	_, err := NewCloudinary(CloudinaryConfig{CloudName: "demo"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if !strings.Contains(err.Error(), "api key") || !strings.Contains(err.Error(), "api secret") {
		t.Fatalf("error should name missing settings: %v", err)
	}
}

func TestCloudinaryUploadSendsSignedParams(t *testing.T) {
	var path, folder, publicID, file, apiKey, signature string
	client := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		folder = r.FormValue("folder")
		publicID = r.FormValue("public_id")
		file = r.FormValue("file")
		apiKey = r.FormValue("api_key")
		signature = r.FormValue("signature")
		writeJSON(w, http.StatusOK, `{"secure_url":"https://res.cloudinary.com/demo/leadervibe/site-gallery/g1.jpg","public_id":"leadervibe/site-gallery/g1"}`)
	})

	res, err := client.Upload(context.Background(), UploadRequest{
		Data:        []byte("png-bytes"),
		ContentType: "image/png",
		Folder:      "site-gallery",
		PublicID:    "g1",
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if res.AssetID != "leadervibe/site-gallery/g1" || !strings.HasSuffix(res.URL, "g1.jpg") {
		t.Fatalf("unexpected result: %+v", res)
	}

	if !strings.HasSuffix(path, "/demo/image/upload") {
		t.Fatalf("unexpected path: %s", path)
	}
	if folder != "leadervibe/site-gallery" || publicID != "g1" {
		t.Fatalf("unexpected upload params: folder=%q public_id=%q", folder, publicID)
	}
	if !strings.HasPrefix(file, "data:image/png;base64,") {
		t.Fatalf("file should be sent as data uri, got %q", file)
	}
	if apiKey != "key-123" || signature == "" {
		t.Fatalf("request should be signed: api_key=%q signature=%q", apiKey, signature)
	}
}

func TestCloudinaryUploadSurfacesProviderError(t *testing.T) {
	client := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"error":{"message":"Invalid Signature"}}`)
	})

	_, err := client.Upload(context.Background(), UploadRequest{Data: []byte("x"), PublicID: "g1"})
	if err == nil || !strings.Contains(err.Error(), "Invalid Signature") {
		t.Fatalf("expected provider message in error, got %v", err)
	}
}

func TestCloudinaryUploadRejectsEmptyImage(t *testing.T) {
	called := false
	client := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	if _, err := client.Upload(context.Background(), UploadRequest{PublicID: "g1"}); err == nil {
		t.Fatal("expected empty image to fail")
	}
	if called {
		t.Fatal("empty image should not reach the provider")
	}
}

func TestCloudinaryDeleteTreatsNotFoundAsSuccess(t *testing.T) {
	results := []string{`{"result":"ok"}`, `{"result":"not found"}`, `{"result":"error"}`}
	var ids []string
	client := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/image/destroy") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		ids = append(ids, r.FormValue("public_id"))
		writeJSON(w, http.StatusOK, results[len(ids)-1])
	})

	if err := client.Delete(context.Background(), "leadervibe/site-gallery/g1"); err != nil {
		t.Fatalf("ok result should succeed: %v", err)
	}
	if err := client.Delete(context.Background(), "leadervibe/site-gallery/g2"); err != nil {
		t.Fatalf("not found result should succeed: %v", err)
	}
	if err := client.Delete(context.Background(), "leadervibe/site-gallery/g3"); err == nil {
		t.Fatal("unexpected result should fail")
	}
	if err := client.Delete(context.Background(), "  "); err != nil {
		t.Fatalf("blank asset id should be a no-op: %v", err)
	}
	if len(ids) != 3 || ids[0] != "leadervibe/site-gallery/g1" {
		t.Fatalf("unexpected provider calls: %v", ids)
	}
}

func TestMemoryStoreRecordsCalls(t *testing.T) {
	store := NewMemory("")
	res, err := store.Upload(context.Background(), UploadRequest{Data: []byte("a"), Folder: "about/jane", PublicID: "jane-photo"})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if res.AssetID != "about/jane/jane-photo" || res.URL != "https://images.local/about/jane/jane-photo" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !store.Has(res.AssetID) {
		t.Fatal("asset should be stored")
	}

	if err := store.Delete(context.Background(), res.AssetID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(context.Background(), res.AssetID); err != nil {
		t.Fatalf("deleting twice should be fine: %v", err)
	}
	if store.Has(res.AssetID) || store.Calls() != 3 {
		t.Fatalf("unexpected state: has=%v calls=%d", store.Has(res.AssetID), store.Calls())
	}
}

func TestGuardedOpensAfterConsecutiveFailures(t *testing.T) {
	inner := NewMemory("")
	inner.UploadErr = errors.New("provider down")
	guarded := NewGuarded(inner, BreakerConfig{Name: "test-open", FailureThreshold: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		if _, err := guarded.Upload(context.Background(), UploadRequest{Data: []byte("x")}); err == nil {
			t.Fatal("expected provider error")
		}
	}

	_, err := guarded.Upload(context.Background(), UploadRequest{Data: []byte("x")})
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if len(inner.Uploads()) != 2 {
		t.Fatalf("open breaker should not reach the provider, got %d calls", len(inner.Uploads()))
	}

	// delete path has its own breaker
	if err := guarded.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("delete should still work: %v", err)
	}
}
