// Package site renders the metrics JSON into static HTML pages under
// reports/. It reads only site_data/*.json and computes nothing beyond
// presentation.
package site

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/metrics"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"pts": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
}

// page is the data every template sees.
type page struct {
	Title   string
	Root    string // relative prefix back to reports/
	Version *DataVersion
}

type championRow struct {
	Season   int
	Champion string
	Manager  string
	RunnerUp string
}

// Data is the metrics output the site is built from. Missing files leave
// their section empty.
type Data struct {
	Champions []metrics.Finish
	RunnerUps []metrics.Finish
	AllTime   []metrics.Aggregate
	Records   metrics.Records
	Seasons   []metrics.SeasonPage
}

// Result lists the pages written by a build.
type Result struct {
	Pages []string
}

// Builder renders the site.
type Builder struct {
	paths  config.Paths
	logger *slog.Logger
}

// New creates a builder over the given layout.
func New(paths config.Paths, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{paths: paths, logger: logger}
}

// LoadData reads every metrics file that exists in dir.
func LoadData(dir string) (*Data, error) {
	d := &Data{}
	files := []struct {
		name string
		v    interface{}
	}{
		{config.ChampionsFile, &d.Champions},
		{config.RunnerUpsFile, &d.RunnerUps},
		{config.AllTimeFile, &d.AllTime},
		{config.RecordsFile, &d.Records},
		{config.SeasonsFile, &d.Seasons},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := json.Unmarshal(data, f.v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return d, nil
}

// Build renders every page into the reports directory.
func (b *Builder) Build() (*Result, error) {
	start := time.Now()
	data, err := LoadData(b.paths.SiteDataDir)
	if err != nil {
		return nil, err
	}
	version, err := ComputeDataVersion(b.paths.SiteDataDir)
	if err != nil {
		return nil, err
	}

	// Season pages are keyed by data; drop pages of seasons no longer present.
	seasonsDir := filepath.Join(b.paths.ReportsDir, "seasons")
	if err := os.RemoveAll(seasonsDir); err != nil {
		return nil, fmt.Errorf("clear %s: %w", seasonsDir, err)
	}

	result := &Result{}
	render := func(name, tmpl string, v interface{}) error {
		path := filepath.Join(b.paths.ReportsDir, name)
		if err := renderPage(path, tmpl, v); err != nil {
			return err
		}
		result.Pages = append(result.Pages, path)
		return nil
	}

	base := func(title, root string) page { return page{Title: title, Root: root, Version: version} }

	if err := render("index.html", "index.html", struct {
		page
		Seasons []metrics.SeasonPage
	}{base("League History", ""), data.Seasons}); err != nil {
		return result, err
	}
	if err := render("champions.html", "champions.html", struct {
		page
		Rows []championRow
	}{base("Champions", ""), championRows(data)}); err != nil {
		return result, err
	}
	if err := render("all_time.html", "all_time.html", struct {
		page
		Rows []metrics.Aggregate
	}{base("All-time Standings", ""), data.AllTime}); err != nil {
		return result, err
	}
	if err := render("records.html", "records.html", struct {
		page
		Records metrics.Records
	}{base("League Records", ""), data.Records}); err != nil {
		return result, err
	}
	for _, s := range data.Seasons {
		name := filepath.Join("seasons", strconv.Itoa(s.Season)+".html")
		if err := render(name, "season.html", struct {
			page
			Page metrics.SeasonPage
		}{base(fmt.Sprintf("Season %d", s.Season), "../"), s}); err != nil {
			return result, err
		}
	}

	b.logger.Info("Site built",
		"duration", time.Since(start).Round(time.Millisecond),
		"pages", len(result.Pages),
		"dir", b.paths.ReportsDir,
	)
	return result, nil
}

// championRows pairs each champion with the same season's runner-up.
func championRows(d *Data) []championRow {
	runnerUps := make(map[int]string, len(d.RunnerUps))
	for _, r := range d.RunnerUps {
		if _, ok := runnerUps[r.Season]; !ok {
			runnerUps[r.Season] = r.TeamName
		}
	}
	rows := make([]championRow, 0, len(d.Champions))
	for _, c := range d.Champions {
		rows = append(rows, championRow{
			Season:   c.Season,
			Champion: c.TeamName,
			Manager:  c.Manager,
			RunnerUp: runnerUps[c.Season],
		})
	}
	return rows
}

func renderPage(path, tmpl string, v interface{}) error {
	t, err := template.New("layout.html").Funcs(funcs).
		ParseFS(templateFS, "templates/layout.html", "templates/"+tmpl)
	if err != nil {
		return fmt.Errorf("parse %s: %w", tmpl, err)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
