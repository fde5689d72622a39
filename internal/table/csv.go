package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes header + records to path, creating parent directories and
// truncating any previous file. Output is fully overwritten on every run.
func WriteCSV(path string, header []string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header %s: %w", path, err)
	}
	if err := w.WriteAll(records); err != nil {
		f.Close()
		return fmt.Errorf("write rows %s: %w", path, err)
	}
	return f.Close()
}

// FormatFloat renders a float the shortest way that round-trips.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSeasons writes the season settings table in SeasonsColumns order.
func WriteSeasons(path string, rows []Season) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Season),
			r.LeagueKey,
			r.LeagueName,
			strconv.Itoa(r.NumWeeks),
			strconv.Itoa(r.NumTeams),
			r.ScoringType,
		})
	}
	return WriteCSV(path, SeasonsColumns, records)
}

// WriteStandings writes the standings table in StandingsColumns order.
func WriteStandings(path string, rows []Standing) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			strconv.Itoa(r.Season),
			r.LeagueKey,
			r.TeamKey,
			r.TeamName,
			r.Manager,
			strconv.Itoa(r.Wins),
			strconv.Itoa(r.Losses),
			strconv.Itoa(r.Ties),
			strconv.Itoa(r.Rank),
			FormatFloat(r.PointsFor),
			FormatFloat(r.PointsAgainst),
		})
	}
	return WriteCSV(path, StandingsColumns, records)
}

// WriteMatchups writes the matchup table in MatchupsColumns order. A nil
// IsHome is written as an empty cell.
func WriteMatchups(path string, rows []Matchup) error {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		home := ""
		if r.IsHome != nil {
			home = strconv.FormatBool(*r.IsHome)
		}
		records = append(records, []string{
			strconv.Itoa(r.Season),
			strconv.Itoa(r.Week),
			r.TeamKey,
			r.TeamName,
			r.OppKey,
			r.OppName,
			FormatFloat(r.PtsFor),
			FormatFloat(r.PtsAgainst),
			home,
		})
	}
	return WriteCSV(path, MatchupsColumns, records)
}

// --------------------------------------------------------------------------
// Readers
// --------------------------------------------------------------------------

// record wraps one CSV line with header-based lookups. The first parse
// error is kept and reported once per line.
type record struct {
	idx  map[string]int
	row  []string
	line int
	err  error
}

func (r *record) str(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.row) {
		if r.err == nil {
			r.err = fmt.Errorf("line %d: missing column %q", r.line, col)
		}
		return ""
	}
	return r.row[i]
}

func (r *record) integer(col string) int {
	s := r.str(col)
	n, err := strconv.Atoi(s)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d: column %q: %w", r.line, col, err)
	}
	return n
}

func (r *record) number(col string) float64 {
	s := r.str(col)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("line %d: column %q: %w", r.line, col, err)
	}
	return f
}

func (r *record) optBool(col string) *bool {
	i, ok := r.idx[col]
	if !ok || i >= len(r.row) || r.row[i] == "" {
		return nil
	}
	b, err := strconv.ParseBool(r.row[i])
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("line %d: column %q: %w", r.line, col, err)
		}
		return nil
	}
	return &b
}

// readCSV reads path and calls fn for every data line.
func readCSV(path string, fn func(r *record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("read %s: empty file", path)
		}
		return fmt.Errorf("read header %s: %w", path, err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[col] = i
	}

	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		line++
		if err := fn(&record{idx: idx, row: row, line: line}); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
}

// ReadSeasons loads the season settings table written by WriteSeasons.
func ReadSeasons(path string) ([]Season, error) {
	var rows []Season
	err := readCSV(path, func(r *record) error {
		s := Season{
			Season:      r.integer("season"),
			LeagueKey:   r.str("league_key"),
			LeagueName:  r.str("league_name"),
			NumWeeks:    r.integer("num_weeks"),
			NumTeams:    r.integer("num_teams"),
			ScoringType: r.str("scoring_type"),
		}
		if r.err != nil {
			return r.err
		}
		rows = append(rows, s)
		return nil
	})
	return rows, err
}

// ReadStandings loads the standings table written by WriteStandings.
func ReadStandings(path string) ([]Standing, error) {
	var rows []Standing
	err := readCSV(path, func(r *record) error {
		s := Standing{
			Season:        r.integer("season"),
			LeagueKey:     r.str("league_key"),
			TeamKey:       r.str("team_key"),
			TeamName:      r.str("team_name"),
			Manager:       r.str("manager"),
			Wins:          r.integer("wins"),
			Losses:        r.integer("losses"),
			Ties:          r.integer("ties"),
			Rank:          r.integer("rank"),
			PointsFor:     r.number("points_for"),
			PointsAgainst: r.number("points_against"),
		}
		if r.err != nil {
			return r.err
		}
		rows = append(rows, s)
		return nil
	})
	return rows, err
}

// ReadMatchups loads the matchup table written by WriteMatchups.
func ReadMatchups(path string) ([]Matchup, error) {
	var rows []Matchup
	err := readCSV(path, func(r *record) error {
		m := Matchup{
			Season:     r.integer("season"),
			Week:       r.integer("week"),
			TeamKey:    r.str("team_key"),
			TeamName:   r.str("team_name"),
			OppKey:     r.str("opp_key"),
			OppName:    r.str("opp_name"),
			PtsFor:     r.number("pts_for"),
			PtsAgainst: r.number("pts_against"),
			IsHome:     r.optBool("is_home"),
		}
		if r.err != nil {
			return r.err
		}
		rows = append(rows, m)
		return nil
	})
	return rows, err
}
