// Package table defines the two normalized tables that sit between the
// transformer and the metrics engine. The transformer writes them as CSV;
// the metrics engine and the warehouse export read them back.
//
// Column order is part of the contract; see StandingsColumns and
// MatchupsColumns.
package table

import "sort"

// Season is one season's settings summary.
type Season struct {
	Season      int    `json:"season"`
	LeagueKey   string `json:"league_key"`
	LeagueName  string `json:"league_name"`
	NumWeeks    int    `json:"num_weeks"`
	NumTeams    int    `json:"num_teams"`
	ScoringType string `json:"scoring_type"`
}

// Standing is one team's final record and points for one season.
type Standing struct {
	Season        int     `json:"season"`
	LeagueKey     string  `json:"league_key"`
	TeamKey       string  `json:"team_key"`
	TeamName      string  `json:"team_name"`
	Manager       string  `json:"manager"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Rank          int     `json:"rank"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
}

// Games returns wins + losses + ties.
func (s Standing) Games() int {
	return s.Wins + s.Losses + s.Ties
}

// Matchup is one team's perspective of one weekly game. Every game appears
// twice, once per participant, with mirrored points.
type Matchup struct {
	Season     int     `json:"season"`
	Week       int     `json:"week"`
	TeamKey    string  `json:"team_key"`
	TeamName   string  `json:"team_name"`
	OppKey     string  `json:"opp_key"`
	OppName    string  `json:"opp_name"`
	PtsFor     float64 `json:"pts_for"`
	PtsAgainst float64 `json:"pts_against"`
	IsHome     *bool   `json:"is_home"` // absent in most seasons
}

// Margin returns pts_for - pts_against from this row's perspective.
func (m Matchup) Margin() float64 {
	return m.PtsFor - m.PtsAgainst
}

var SeasonsColumns = []string{
	"season", "league_key", "league_name", "num_weeks", "num_teams", "scoring_type",
}

var StandingsColumns = []string{
	"season", "league_key", "team_key", "team_name", "manager",
	"wins", "losses", "ties", "rank", "points_for", "points_against",
}

var MatchupsColumns = []string{
	"season", "week", "team_key", "team_name", "opp_key", "opp_name",
	"pts_for", "pts_against", "is_home",
}

// SortStandings orders rows by (season, rank), then team name so that
// duplicate ranks in bad data still sort deterministically.
func SortStandings(rows []Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.TeamName < b.TeamName
	})
}

// SortMatchups orders rows by (season, week, team name). This is the
// chronological iteration order every record scan uses.
func SortMatchups(rows []Matchup) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamKey < b.TeamKey
	})
}
