package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/fantasy-history/internal/api/respond"
	"github.com/albapepper/fantasy-history/internal/cache"
)

// SiteData serves site_data files. JSON files go through the in-memory
// cache and honor If-None-Match; anything else is served from disk.
func (h *Handler) SiteData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if !strings.HasSuffix(name, ".json") {
		h.siteData.ServeHTTP(w, r)
		return
	}

	clean := path.Clean("/" + name)
	file := filepath.Join(h.paths.SiteDataDir, filepath.FromSlash(clean))
	info, err := os.Stat(file)
	if err != nil || info.IsDir() {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			h.logger.Error("Stat site data", "file", file, "error", err)
		}
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no such file: "+clean[1:])
		return
	}

	key := cache.Key(clean, info.ModTime(), info.Size())
	if data, etag, ok := h.cache.Get(key); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, true)
		return
	}

	data, err := os.ReadFile(file)
	if err != nil {
		h.logger.Error("Read site data", "file", file, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not read "+clean[1:])
		return
	}
	etag := h.cache.Set(key, data, cache.TTLSiteData)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, false)
}
