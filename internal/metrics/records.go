package metrics

import (
	"math"
	"sort"

	"github.com/albapepper/fantasy-history/internal/table"
)

// Records are the league's single best-of facts. A record is nil when no
// matchup qualifies.
//
// Ties between equal values go to the first row in (season, week, team name)
// order, so the earliest occurrence holds a record.
type Records struct {
	SingleWeekHigh   *HighScore `json:"single_week_high"`
	SingleWeekMargin *Margin    `json:"single_week_margin"`
	LongestWinStreak *Streak    `json:"longest_win_streak"`
}

// HighScore is the most points scored by one team in one week.
type HighScore struct {
	Season   int     `json:"season"`
	Week     int     `json:"week"`
	TeamName string  `json:"team_name"`
	OppName  string  `json:"opp_name"`
	Points   float64 `json:"points"`
}

// Margin is the largest winning margin in one week.
type Margin struct {
	Season     int     `json:"season"`
	Week       int     `json:"week"`
	TeamName   string  `json:"team_name"`
	OppName    string  `json:"opp_name"`
	Margin     float64 `json:"margin"`
	PtsFor     float64 `json:"pts_for"`
	PtsAgainst float64 `json:"pts_against"`
}

// Streak is a run of consecutive wins. Season and week mark the game that
// completed the run; StartSeason and StartWeek mark the first win.
type Streak struct {
	TeamName    string `json:"team_name"`
	Length      int    `json:"longest_win_streak"`
	Season      int    `json:"season"`
	Week        int    `json:"week"`
	StartSeason int    `json:"start_season"`
	StartWeek   int    `json:"start_week"`
}

// Outcome is a game result from one team's perspective.
type Outcome int

const (
	Loss Outcome = iota
	Tie
	Win
)

// Result classifies a matchup row. Scores within floating-point noise of
// each other are a tie.
func Result(m table.Matchup) Outcome {
	a, b := m.PtsFor, m.PtsAgainst
	if math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b)) {
		return Tie
	}
	if a > b {
		return Win
	}
	return Loss
}

// ComputeRecords scans matchups, which must already be in
// table.SortMatchups order.
func ComputeRecords(matchups []table.Matchup) Records {
	var rec Records
	for _, m := range matchups {
		if rec.SingleWeekHigh == nil || m.PtsFor > rec.SingleWeekHigh.Points {
			rec.SingleWeekHigh = &HighScore{
				Season: m.Season, Week: m.Week,
				TeamName: m.TeamName, OppName: m.OppName,
				Points: m.PtsFor,
			}
		}
		margin := round2(m.Margin())
		if margin > 0 && (rec.SingleWeekMargin == nil || margin > rec.SingleWeekMargin.Margin) {
			rec.SingleWeekMargin = &Margin{
				Season: m.Season, Week: m.Week,
				TeamName: m.TeamName, OppName: m.OppName,
				Margin: margin, PtsFor: m.PtsFor, PtsAgainst: m.PtsAgainst,
			}
		}
	}
	rec.LongestWinStreak = LongestStreak(matchups)
	return rec
}

// TeamStreaks returns every team's best win streak, longest first. Teams are
// identified by name because team keys change every season. A streak
// carries across the end of a season; only a loss or a tie ends it. Weeks
// without a game (byes, elimination) do not break a streak.
//
// Teams with no wins are omitted. Equal lengths are ordered by the earliest
// completing game, then team name.
func TeamStreaks(matchups []table.Matchup) []Streak {
	type run struct {
		best    Streak
		current int
		start   [2]int
		last    [2]int
	}
	runs := make(map[string]*run)
	var teams []string

	rows := append([]table.Matchup(nil), matchups...)
	table.SortMatchups(rows)
	for _, m := range rows {
		r, ok := runs[m.TeamName]
		if !ok {
			r = &run{best: Streak{TeamName: m.TeamName}}
			runs[m.TeamName] = r
			teams = append(teams, m.TeamName)
		}
		week := [2]int{m.Season, m.Week}
		if ok && r.last == week {
			// A second row for the same team and week is bad data.
			continue
		}
		r.last = week

		if Result(m) != Win {
			r.current = 0
			continue
		}
		if r.current == 0 {
			r.start = week
		}
		r.current++
		if r.current > r.best.Length {
			r.best.Length = r.current
			r.best.Season, r.best.Week = m.Season, m.Week
			r.best.StartSeason, r.best.StartWeek = r.start[0], r.start[1]
		}
	}

	out := make([]Streak, 0, len(teams))
	for _, t := range teams {
		if runs[t].best.Length > 0 {
			out = append(out, runs[t].best)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Length != b.Length {
			return a.Length > b.Length
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		return a.TeamName < b.TeamName
	})
	return out
}

// LongestStreak returns the league's longest win streak, or nil if no team
// has won a game.
func LongestStreak(matchups []table.Matchup) *Streak {
	streaks := TeamStreaks(matchups)
	if len(streaks) == 0 {
		return nil
	}
	return &streaks[0]
}
