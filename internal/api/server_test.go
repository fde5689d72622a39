package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fantasy-history/internal/cache"
	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/site"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:          filepath.Join(dir, "data"),
		SiteDataDir:      filepath.Join(dir, "site_data"),
		ReportsDir:       filepath.Join(dir, "reports"),
		CORSAllowOrigins: []string{"http://localhost:4321"},
	}
	require.NoError(t, os.MkdirAll(cfg.SiteDataDir, 0o755))
	require.NoError(t, os.MkdirAll(cfg.ReportsDir, 0o755))
	return cfg
}

func serve(h http.Handler, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_RootRedirects(t *testing.T) {
	r := NewRouter(testConfig(t), cache.New(true), nil)
	rec := serve(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/reports/", rec.Header().Get("Location"))
}

func TestRouter_Reports(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ReportsDir, "champions.html"), []byte("<h1>Champions</h1>"), 0o644))
	r := NewRouter(cfg, cache.New(true), nil)

	rec := serve(r, http.MethodGet, "/reports/champions.html", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Champions")
	assert.NotEmpty(t, rec.Header().Get("X-Process-Time"))

	require.NoError(t, os.WriteFile(filepath.Join(cfg.ReportsDir, "index.html"), []byte("home"), 0o644))
	rec = serve(r, http.MethodGet, "/reports/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home", rec.Body.String())

	rec = serve(r, http.MethodGet, "/reports/missing.html", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_SiteDataETag(t *testing.T) {
	cfg := testConfig(t)
	body := []byte(`[{"season":2023,"team_name":"Team B","manager":"Bob"}]`)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SiteDataDir, config.ChampionsFile), body, 0o644))
	r := NewRouter(cfg, cache.New(true), nil)

	first := serve(r, http.MethodGet, "/site_data/champions.json", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "application/json", first.Header().Get("Content-Type"))
	assert.JSONEq(t, string(body), first.Body.String())
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := serve(r, http.MethodGet, "/site_data/champions.json", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))

	notModified := serve(r, http.MethodGet, "/site_data/champions.json", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusNotModified, notModified.Code)
	assert.Empty(t, notModified.Body.String())

	// A rebuild changes the file and therefore the ETag.
	later := time.Now().Add(time.Minute)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SiteDataDir, config.ChampionsFile), []byte(`[]`), 0o644))
	require.NoError(t, os.Chtimes(filepath.Join(cfg.SiteDataDir, config.ChampionsFile), later, later))
	changed := serve(r, http.MethodGet, "/site_data/champions.json", http.Header{"If-None-Match": {etag}})
	assert.Equal(t, http.StatusOK, changed.Code)
	assert.Equal(t, "[]", changed.Body.String())
}

func TestRouter_SiteDataNotFound(t *testing.T) {
	r := NewRouter(testConfig(t), cache.New(true), nil)

	rec := serve(r, http.MethodGet, "/site_data/nope.json", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var resp struct {
		Error struct{ Code string } `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)

	rec = serve(r, http.MethodGet, "/site_data/../../etc/passwd.json", nil)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestRouter_DataVersion(t *testing.T) {
	cfg := testConfig(t)
	r := NewRouter(cfg, cache.New(true), nil)

	rec := serve(r, http.MethodGet, "/api/data-version", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_DATA")

	data := []byte(`[]`)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.SiteDataDir, config.AllTimeFile), data, 0o644))
	rec = serve(r, http.MethodGet, "/api/data-version", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var v site.DataVersion
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	assert.Equal(t, config.AllTimeFile, v.File)
	assert.Equal(t, site.ShortHash(data), v.Version)
}

func TestRouter_Health(t *testing.T) {
	r := NewRouter(testConfig(t), cache.New(false), nil)
	rec := serve(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "cache")
}

func TestRouter_CORS(t *testing.T) {
	r := NewRouter(testConfig(t), cache.New(true), nil)
	rec := serve(r, http.MethodGet, "/health", http.Header{"Origin": {"http://localhost:4321"}})
	assert.Equal(t, "http://localhost:4321", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = serve(r, http.MethodGet, "/health", http.Header{"Origin": {"http://evil.example"}})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitEnabled = true
	cfg.RateLimitRequests = 2
	cfg.RateLimitWindow = time.Minute
	r := NewRouter(cfg, cache.New(true), nil)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", nil).Code)
	rec := serve(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
