package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/Thinkelution/slasher-tv-ai/internal/assets"
)

func testHandler(t *testing.T) *Handler {
	t.Helper()
	return NewHandler(nil, nil, assets.NewStore(t.TempDir()))
}

func testRouter(t *testing.T, apiKey string) http.Handler {
	t.Helper()
	return NewRouter(testHandler(t), RouterConfig{BackendAPIKey: apiKey})
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	testRouter(t, "secret").ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("health check must be public, got %d", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	router := testRouter(t, "secret")

	// Missing key
	req := httptest.NewRequest("GET", "/v1/listings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}

	// Wrong key
	req = httptest.NewRequest("GET", "/v1/listings", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}

	// Bearer form is accepted (hits the handler, which 500s on the nil db,
	// proving auth passed)
	req = httptest.NewRequest("GET", "/v1/jobs/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code == http.StatusUnauthorized || rec.Code == http.StatusForbidden {
		t.Errorf("bearer auth rejected: %d", rec.Code)
	}
}

func TestGenerateValidation(t *testing.T) {
	h := testHandler(t)

	cases := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing stock", `{"year":2024,"model":"Fat Boy","price":20000,"photo_urls":"https://x/1.jpg"}`},
		{"missing model", `{"stock_number":"HD1","year":2024,"price":20000,"photo_urls":"https://x/1.jpg"}`},
		{"bad price", `{"stock_number":"HD1","year":2024,"model":"Fat Boy","price":0,"photo_urls":"https://x/1.jpg"}`},
		{"no photos", `{"stock_number":"HD1","year":2024,"model":"Fat Boy","price":20000}`},
	}

	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/v1/generate", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		h.Generate(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", tc.name, rec.Code)
		}
	}
}

func TestGetJobInvalidID(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/jobs/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	testRouter(t, "").ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListListingsInvalidLimit(t *testing.T) {
	req := httptest.NewRequest("GET", "/v1/listings?limit=zero", nil)
	rec := httptest.NewRecorder()
	testRouter(t, "").ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestGetAssets(t *testing.T) {
	h := testHandler(t)
	router := NewRouter(h, RouterConfig{})

	// Seed a listing dir with a script file
	dir, err := h.assets.ListingDir("4889", "HD1")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(assets.ScriptPath(dir), []byte("script"), 0o644); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest("GET", "/v1/assets/4889/HD1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Summary assets.Summary `json:"summary"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Summary.HasScript {
		t.Errorf("summary should report the script: %+v", resp.Summary)
	}
}
