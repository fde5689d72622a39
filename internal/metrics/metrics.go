// Package metrics derives league history from the normalized tables:
// champions, runner-ups, all-time aggregates, records and per-season pages.
//
// Every output is a pure function of the input tables. There are no
// timestamps and every collection is sorted, so two runs over the same
// tables produce byte-identical files.
package metrics

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/table"
)

// Inputs are the processed tables the engine reads.
type Inputs struct {
	Seasons   []table.Season
	Standings []table.Standing
	Matchups  []table.Matchup
}

// Report holds every computed output.
type Report struct {
	Champions []Finish     `json:"champions"`
	RunnerUps []Finish     `json:"runnerups"`
	AllTime   []Aggregate  `json:"all_time"`
	Records   Records      `json:"records"`
	Seasons   []SeasonPage `json:"seasons"`
}

// Finish is a team's placing in one season.
type Finish struct {
	Season   int    `json:"season"`
	TeamName string `json:"team_name"`
	Manager  string `json:"manager"`
}

// Compute derives the full report. It never fails: empty tables give empty
// outputs and null records.
func Compute(in Inputs) *Report {
	standings := append([]table.Standing(nil), in.Standings...)
	matchups := append([]table.Matchup(nil), in.Matchups...)
	table.SortStandings(standings)
	table.SortMatchups(matchups)

	return &Report{
		Champions: Finishers(standings, 1),
		RunnerUps: Finishers(standings, 2),
		AllTime:   AllTime(standings),
		Records:   ComputeRecords(matchups),
		Seasons:   SeasonPages(in.Seasons, standings, matchups),
	}
}

// Finishers returns the teams holding rank in each season, ordered by
// season then team name.
func Finishers(standings []table.Standing, rank int) []Finish {
	out := []Finish{}
	for _, s := range standings {
		if s.Rank == rank {
			out = append(out, Finish{Season: s.Season, TeamName: s.TeamName, Manager: s.Manager})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Season != out[j].Season {
			return out[i].Season < out[j].Season
		}
		return out[i].TeamName < out[j].TeamName
	})
	return out
}

// round2 rounds half away from zero to two decimal places.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// --------------------------------------------------------------------------
// Loading and writing
// --------------------------------------------------------------------------

// Load reads the processed tables. The standings table is required; the
// matchup and season tables may be absent, in which case records and season
// pages come out empty.
func Load(paths config.Paths) (Inputs, error) {
	var in Inputs
	var err error
	if in.Standings, err = table.ReadStandings(paths.StandingsTable()); err != nil {
		return in, fmt.Errorf("load standings: %w", err)
	}
	if in.Matchups, err = table.ReadMatchups(paths.MatchupsTable()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return in, fmt.Errorf("load matchups: %w", err)
	}
	if in.Seasons, err = table.ReadSeasons(paths.SeasonsTable()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return in, fmt.Errorf("load seasons: %w", err)
	}
	return in, nil
}

// Write overwrites the public JSON files and their CSV mirrors.
func (r *Report) Write(paths config.Paths) error {
	outputs := []struct {
		name string
		v    interface{}
	}{
		{config.ChampionsFile, r.Champions},
		{config.RunnerUpsFile, r.RunnerUps},
		{config.AllTimeFile, r.AllTime},
		{config.RecordsFile, r.Records},
		{config.SeasonsFile, r.Seasons},
	}
	for _, o := range outputs {
		if err := table.WriteJSON(paths.SiteData(o.name), o.v); err != nil {
			return err
		}
	}
	return r.writeCSV(paths.ReportsCSV)
}

// Run loads the tables, computes the report and writes it.
func Run(paths config.Paths, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	in, err := Load(paths)
	if err != nil {
		return nil, err
	}
	report := Compute(in)
	if err := report.Write(paths); err != nil {
		return report, err
	}
	logger.Info("Metrics finished",
		"duration", time.Since(start).Round(time.Millisecond),
		"champions", len(report.Champions),
		"all_time", len(report.AllTime),
		"seasons", len(report.Seasons),
		"dir", paths.SiteDataDir,
	)
	return report, nil
}
