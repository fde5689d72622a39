// Package handler provides the preview server's HTTP handlers. Everything
// is read from disk on request so a rebuild shows up without a restart.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/fantasy-history/internal/api/respond"
	"github.com/albapepper/fantasy-history/internal/cache"
	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/site"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	paths    config.Paths
	cache    *cache.Cache
	logger   *slog.Logger
	reports  http.Handler
	siteData http.Handler
}

// New creates a Handler serving the given layout.
func New(paths config.Paths, c *cache.Cache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		paths:    paths,
		cache:    c,
		logger:   logger,
		reports:  http.StripPrefix("/reports/", http.FileServer(http.Dir(paths.ReportsDir))),
		siteData: http.StripPrefix("/site_data/", http.FileServer(http.Dir(paths.SiteDataDir))),
	}
}

// Root redirects to the site's home page. The file server answers a
// directory request with its index.html.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/reports/", http.StatusFound)
}

// Reports serves the rendered HTML pages.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	h.reports.ServeHTTP(w, r)
}

// HealthCheck returns basic health status and cache statistics.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DataVersion reports which metrics build the site reflects.
func (h *Handler) DataVersion(w http.ResponseWriter, r *http.Request) {
	v, err := site.ComputeDataVersion(h.paths.SiteDataDir)
	if err != nil {
		h.logger.Error("Data version failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not read site data")
		return
	}
	if v == nil {
		respond.WriteError(w, http.StatusNotFound, "NO_DATA", "no metrics have been generated yet")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, v)
}
