package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/c3r4h/dptkp/internal/api"
)

func testConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           "8086",
		WebDir:         "../../web",
		CategoriesFeed: "../../web/static/category.json",
		LocationsFeed:  "../../web/static/locations.json",
		FeedTimeout:    5 * time.Second,
		CenterLat:      -7.825335,
		CenterLng:      110.374922,
		Zoom:           13,
		TileURL:        "https://{s}.basemaps.cartocdn.com/light_all/{z}/{x}/{y}{r}.png",
		DuckDB:         true,
		SessionIdle:    time.Hour,
		Logger:         zerolog.Nop(),
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPageStartsSession(t *testing.T) {
	srv := New(testConfig())
	defer srv.Close()

	rec := get(t, srv, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "/api/v1/viewer/") || !strings.Contains(body, "light_all") {
		t.Fatalf("page missing viewer routes or tile url:\n%s", body)
	}
	if !strings.Contains(body, "encodeURIComponent(evt.detail.id)") {
		t.Error("marker click posts an unescaped location id")
	}
	if srv.Sessions().Len() != 1 {
		t.Fatalf("sessions = %d, want 1", srv.Sessions().Len())
	}

	if rec := get(t, srv, "/nope"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rec.Code)
	}
}

func TestLoadFeeds(t *testing.T) {
	srv := New(testConfig())
	defer srv.Close()

	if err := srv.LoadFeeds(context.Background()); err != nil {
		t.Fatalf("LoadFeeds: %v", err)
	}
	if n := len(srv.Catalog().Locations()); n != 4 {
		t.Fatalf("locations = %d, want 4", n)
	}
	if n := len(srv.Catalog().Categories()); n != 3 {
		t.Fatalf("categories = %d, want 3", n)
	}

	rec := get(t, srv, "/api/v1/tables")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "locations") {
		t.Fatalf("tables: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLoadFeedsMissingCategories(t *testing.T) {
	cfg := testConfig()
	cfg.CategoriesFeed = "../../web/static/missing.json"
	cfg.DuckDB = false
	srv := New(cfg)

	if err := srv.LoadFeeds(context.Background()); err == nil {
		t.Fatal("expected error for missing category feed")
	}
	if n := len(srv.Catalog().Locations()); n != 4 {
		t.Fatalf("locations = %d, want 4 despite category failure", n)
	}
	if rec := get(t, srv, "/api/v1/tables"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("tables without db: status = %d, want 503", rec.Code)
	}
}

func TestRootWithoutWebDir(t *testing.T) {
	cfg := testConfig()
	cfg.WebDir = ""
	cfg.DuckDB = false
	srv := New(cfg)

	rec := get(t, srv, "/")
	if !strings.Contains(rec.Body.String(), `"status":"running"`) {
		t.Fatalf("root = %s", rec.Body.String())
	}
	if rec.Header().Get("Link") == "" {
		t.Error("root has no Link header")
	}
	if srv.Sessions().Len() != 0 {
		t.Error("status document started a session")
	}
}

func TestOpenAPI(t *testing.T) {
	srv := New(testConfig())
	defer srv.Close()

	if v := srv.OpenAPI().Info.Version; v != api.Version {
		t.Errorf("openapi version = %q, want %q", v, api.Version)
	}
	paths := srv.OpenAPI().Paths
	for _, p := range []string{
		"/health", "/api/v1/locations", "/api/v1/locations/{id}",
		"/api/v1/viewer/{session}/select/{id}", "/api/v1/query",
	} {
		if _, ok := paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}
}
