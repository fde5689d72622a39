// Package snapshot stores raw per-season API documents on disk:
//
//	data/raw/{season}/{settings,standings,matchups,draft,rosters,transactions}.json
//
// A season directory is write-once. Re-pulling a season builds a fresh
// directory next to the old one and swaps it in on Commit, so readers never
// see a season that mixes two pulls.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/albapepper/fantasy-history/internal/table"
)

// Document names one raw JSON file within a season directory.
type Document string

const (
	Settings     Document = "settings"
	Standings    Document = "standings"
	Matchups     Document = "matchups"
	Draft        Document = "draft"
	Rosters      Document = "rosters"
	Transactions Document = "transactions"
)

// Documents lists every document in pull order.
var Documents = []Document{Settings, Standings, Matchups, Draft, Rosters, Transactions}

// Optional reports whether a season without this document is still
// complete. Older seasons often have no draft or transaction history.
func (d Document) Optional() bool {
	return d == Draft || d == Transactions
}

// FileName returns "<doc>.json".
func (d Document) FileName() string {
	return string(d) + ".json"
}

const partialSuffix = ".partial"

// Store is the raw snapshot root (data/raw).
type Store struct {
	root string
}

// New returns a store rooted at dir.
func New(dir string) *Store {
	return &Store{root: dir}
}

// SeasonDir returns the directory of a committed season.
func (s *Store) SeasonDir(season string) string {
	return filepath.Join(s.root, season)
}

// Seasons lists committed season directories in ascending order.
func (s *Store) Seasons() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}
	var seasons []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, partialSuffix) {
			continue
		}
		seasons = append(seasons, name)
	}
	sort.Strings(seasons)
	return seasons, nil
}

// Read decodes a document into v. It returns false, nil when the file does
// not exist.
func (s *Store) Read(season string, doc Document, v interface{}) (bool, error) {
	path := filepath.Join(s.SeasonDir(season), doc.FileName())
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

// --------------------------------------------------------------------------
// Season writer
// --------------------------------------------------------------------------

// SeasonWriter collects one season's documents in a staging directory.
type SeasonWriter struct {
	store  *Store
	season string
	dir    string
}

// Begin starts a wholesale re-pull of season. Any leftover staging
// directory from an interrupted pull is discarded.
func (s *Store) Begin(season string) (*SeasonWriter, error) {
	if season == "" || strings.ContainsAny(season, `/\`) || strings.HasPrefix(season, ".") {
		return nil, fmt.Errorf("invalid season %q", season)
	}
	dir := filepath.Join(s.root, season+partialSuffix)
	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return &SeasonWriter{store: s, season: season, dir: dir}, nil
}

// Season returns the season being written.
func (w *SeasonWriter) Season() string { return w.season }

// Write stores one document.
func (w *SeasonWriter) Write(doc Document, v interface{}) error {
	return table.WriteJSON(filepath.Join(w.dir, doc.FileName()), v)
}

// Commit replaces the season's directory with the staged one. Every
// required document must have been written.
func (w *SeasonWriter) Commit() error {
	for _, doc := range Documents {
		if doc.Optional() {
			continue
		}
		if _, err := os.Stat(filepath.Join(w.dir, doc.FileName())); err != nil {
			return fmt.Errorf("commit season %s: missing %s", w.season, doc.FileName())
		}
	}
	final := w.store.SeasonDir(w.season)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("remove old %s: %w", final, err)
	}
	if err := os.Rename(w.dir, final); err != nil {
		return fmt.Errorf("commit season %s: %w", w.season, err)
	}
	return nil
}

// Abort discards the staged documents.
func (w *SeasonWriter) Abort() {
	_ = os.RemoveAll(w.dir)
}
