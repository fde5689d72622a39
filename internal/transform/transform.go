// Package transform turns raw per-season snapshots into the normalized
// standings and matchup tables.
//
// Raw schemas drift between seasons, so every row goes through a validation
// pass that returns either a typed row or an error. Defective rows are
// logged, counted and dropped; they never abort the run.
package transform

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/snapshot"
	"github.com/albapepper/fantasy-history/internal/table"
)

// Result tracks counts and row-level defects from a transform run.
type Result struct {
	Seasons          []table.Season
	Standings        []table.Standing
	Matchups         []table.Matchup
	SeasonsSkipped   int
	StandingsSkipped int // rows
	WeeksSkipped     int // malformed week keys or non-list week values
	GamesSkipped     int // each skipped game drops two matchup rows
	Errors           []string
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the transform.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"seasons=%d standings=%d matchups=%d seasons_skipped=%d standings_skipped=%d weeks_skipped=%d games_skipped=%d",
		len(r.Seasons), len(r.Standings), len(r.Matchups),
		r.SeasonsSkipped, r.StandingsSkipped, r.WeeksSkipped, r.GamesSkipped,
	)
}

// Transformer reads a snapshot store and builds the tables.
type Transformer struct {
	store  *snapshot.Store
	logger *slog.Logger
}

// New creates a transformer over the raw snapshot directory.
func New(rawDir string, logger *slog.Logger) *Transformer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{store: snapshot.New(rawDir), logger: logger}
}

// Build reads every season and returns the sorted tables. Only a missing or
// unreadable raw directory is an error.
func (t *Transformer) Build() (*Result, error) {
	seasons, err := t.store.Seasons()
	if err != nil {
		return nil, fmt.Errorf("list raw seasons: %w", err)
	}

	result := &Result{}
	for _, dir := range seasons {
		t.season(dir, result)
	}

	sort.SliceStable(result.Seasons, func(i, j int) bool {
		return result.Seasons[i].Season < result.Seasons[j].Season
	})
	table.SortStandings(result.Standings)
	table.SortMatchups(result.Matchups)
	return result, nil
}

// Run builds the tables and overwrites the processed CSV files.
func (t *Transformer) Run(paths config.Paths) (*Result, error) {
	start := time.Now()
	result, err := t.Build()
	if err != nil {
		return nil, err
	}

	if err := table.WriteSeasons(paths.SeasonsTable(), result.Seasons); err != nil {
		return result, err
	}
	if err := table.WriteStandings(paths.StandingsTable(), result.Standings); err != nil {
		return result, err
	}
	t.logger.Info("Wrote standings", "path", paths.StandingsTable(), "rows", len(result.Standings))
	if err := table.WriteMatchups(paths.MatchupsTable(), result.Matchups); err != nil {
		return result, err
	}
	t.logger.Info("Wrote matchups", "path", paths.MatchupsTable(), "rows", len(result.Matchups))

	t.logger.Info("Transform finished", "duration", time.Since(start).Round(time.Millisecond),
		"summary", result.Summary())
	return result, nil
}

// season transforms one season directory into result.
func (t *Transformer) season(dir string, result *Result) {
	var settings map[string]interface{}
	found, err := t.store.Read(dir, snapshot.Settings, &settings)
	if err != nil || !found {
		t.skipSeason(dir, "settings.json unreadable or absent", err, result)
		return
	}
	season, err := parseSeason(settings)
	if err != nil {
		t.skipSeason(dir, "bad settings", err, result)
		return
	}
	result.Seasons = append(result.Seasons, season)

	var standings []interface{}
	if found, err := t.store.Read(dir, snapshot.Standings, &standings); err != nil || !found {
		t.logger.Warn("No standings for season", "season", season.Season, "error", err)
	} else {
		t.standings(season, standings, result)
	}

	var matchups map[string]interface{}
	if found, err := t.store.Read(dir, snapshot.Matchups, &matchups); err != nil || !found {
		t.logger.Warn("No matchups for season", "season", season.Season, "error", err)
	} else {
		t.matchups(season, matchups, result)
	}
}

func (t *Transformer) standings(season table.Season, raw []interface{}, result *Result) {
	seen := make(map[string]bool, len(raw))
	ranks := make(map[int]string, len(raw))
	for i, entry := range raw {
		row, err := parseStanding(season, entry)
		if err == nil && seen[row.TeamKey] {
			err = fmt.Errorf("duplicate team %s", row.TeamKey)
		}
		if prev, ok := ranks[row.Rank]; err == nil && ok {
			err = fmt.Errorf("rank %d already held by %s", row.Rank, prev)
		}
		if err != nil {
			t.logger.Warn("Skipping standings row", "season", season.Season, "index", i, "reason", err)
			result.StandingsSkipped++
			result.AddErrorf("standings %d[%d]: %v", season.Season, i, err)
			continue
		}
		seen[row.TeamKey] = true
		ranks[row.Rank] = row.TeamKey
		result.Standings = append(result.Standings, row)
	}
}

func (t *Transformer) matchups(season table.Season, raw map[string]interface{}, result *Result) {
	weeks := make([]string, 0, len(raw))
	for wk := range raw {
		weeks = append(weeks, wk)
	}
	sort.Slice(weeks, func(i, j int) bool {
		a, _ := strconv.Atoi(weeks[i])
		b, _ := strconv.Atoi(weeks[j])
		if a != b {
			return a < b
		}
		return weeks[i] < weeks[j]
	})

	for _, wk := range weeks {
		games, isList := raw[wk].([]interface{})
		week, err := strconv.Atoi(wk)
		if err != nil || week < 1 || !isList {
			t.logger.Warn("Skipping malformed week", "season", season.Season, "week", wk)
			result.WeeksSkipped++
			result.GamesSkipped += len(games)
			result.AddErrorf("matchups %d: malformed week %q", season.Season, wk)
			continue
		}
		for i, g := range games {
			rows, err := parseGame(season.Season, week, g)
			if err != nil {
				t.logger.Warn("Skipping matchup", "season", season.Season, "week", week, "index", i, "reason", err)
				result.GamesSkipped++
				result.AddErrorf("matchups %d wk%d[%d]: %v", season.Season, week, i, err)
				continue
			}
			result.Matchups = append(result.Matchups, rows[0], rows[1])
		}
	}
}

func (t *Transformer) skipSeason(dir, reason string, err error, result *Result) {
	t.logger.Warn("Skipping season", "dir", dir, "reason", reason, "error", err)
	result.SeasonsSkipped++
	result.AddErrorf("season %s: %s", dir, reason)
}
