package transform

import (
	"errors"
	"fmt"

	"github.com/albapepper/fantasy-history/internal/provider"
	"github.com/albapepper/fantasy-history/internal/table"
)

// errMissing marks a required field that is absent or not parseable.
var errMissing = errors.New("missing or malformed field")

func missing(field string) error {
	return fmt.Errorf("%w: %s", errMissing, field)
}

// Field locations across seasons. Yahoo's standings put the record under
// "team_standings"; older exports and the client library use "standings".
var (
	winsPaths   = [][]string{{"team_standings", "outcome_totals", "wins"}, {"standings", "outcome_totals", "wins"}}
	lossesPaths = [][]string{{"team_standings", "outcome_totals", "losses"}, {"standings", "outcome_totals", "losses"}}
	tiesPaths   = [][]string{{"team_standings", "outcome_totals", "ties"}, {"standings", "outcome_totals", "ties"}}
	rankPaths   = [][]string{{"team_standings", "rank"}, {"standings", "rank"}, {"rank"}}
	pfPaths     = [][]string{{"team_points", "total"}, {"team_standings", "points_for"}, {"standings", "points_for"}, {"points_for"}}
	paPaths     = [][]string{{"team_points_against", "total"}, {"team_standings", "points_against"}, {"standings", "points_against"}, {"points_against"}}
)

// parseSeason validates a settings document.
func parseSeason(raw map[string]interface{}) (table.Season, error) {
	season, ok := provider.ExtractInt(raw["season"])
	if !ok {
		return table.Season{}, missing("season")
	}
	s := table.Season{Season: season}
	s.LeagueKey, _ = provider.ExtractString(raw["league_key"])
	s.LeagueName, _ = provider.ExtractString(raw["name"])
	s.NumWeeks, _ = provider.ExtractInt(provider.First(raw, []string{"end_week"}, []string{"settings", "end_week"}))
	s.NumTeams, _ = provider.ExtractInt(provider.First(raw, []string{"num_teams"}, []string{"settings", "num_teams"}))
	s.ScoringType, _ = provider.ExtractString(provider.First(raw, []string{"scoring_type"}, []string{"settings", "scoring_type"}))
	return s, nil
}

// parseStanding validates one team entry of standings.json. Ties, manager
// and league key are optional; everything else is required.
func parseStanding(season table.Season, raw interface{}) (table.Standing, error) {
	t, ok := raw.(map[string]interface{})
	if !ok {
		return table.Standing{}, missing("team object")
	}

	row := table.Standing{Season: season.Season}
	if row.TeamKey, ok = provider.ExtractString(t["team_key"]); !ok {
		return row, missing("team_key")
	}
	if row.TeamName, ok = provider.ExtractString(t["name"]); !ok {
		return row, missing("name")
	}
	if row.Wins, ok = provider.ExtractInt(provider.First(t, winsPaths...)); !ok || row.Wins < 0 {
		return row, missing("wins")
	}
	if row.Losses, ok = provider.ExtractInt(provider.First(t, lossesPaths...)); !ok || row.Losses < 0 {
		return row, missing("losses")
	}
	if row.Rank, ok = provider.ExtractInt(provider.First(t, rankPaths...)); !ok || row.Rank < 1 {
		return row, missing("rank")
	}
	if row.PointsFor, ok = provider.ExtractValue(provider.First(t, pfPaths...)); !ok {
		return row, missing("points_for")
	}
	if row.PointsAgainst, ok = provider.ExtractValue(provider.First(t, paPaths...)); !ok {
		return row, missing("points_against")
	}

	if ties, ok := provider.ExtractInt(provider.First(t, tiesPaths...)); ok && ties >= 0 {
		row.Ties = ties
	}
	row.Manager = managerNickname(t["managers"])
	if key, ok := provider.ExtractString(t["league_key"]); ok {
		row.LeagueKey = key
	} else {
		row.LeagueKey = season.LeagueKey
	}
	return row, nil
}

// managerNickname returns the first listed manager's nickname. It accepts
// [{"manager": {...}}, ...], {"manager": {...}}, {"manager": [...]} and
// [{"nickname": ...}].
func managerNickname(v interface{}) string {
	first := func(v interface{}) interface{} {
		if l, ok := v.([]interface{}); ok {
			if len(l) == 0 {
				return nil
			}
			return l[0]
		}
		return v
	}
	m := first(v)
	if wrapper, ok := m.(map[string]interface{}); ok {
		if inner, ok := wrapper["manager"]; ok {
			m = first(inner)
		}
	}
	nick, _ := provider.ExtractString(provider.Path(m, "nickname"))
	return nick
}

// gameTeam is one side of a matchup.
type gameTeam struct {
	key    string
	name   string
	points float64
	isHome *bool
}

func parseGameTeam(raw interface{}) (gameTeam, error) {
	t, ok := raw.(map[string]interface{})
	if !ok {
		return gameTeam{}, missing("team object")
	}
	if inner, ok := t["team"].(map[string]interface{}); ok && len(t) == 1 {
		t = inner
	}
	var g gameTeam
	if g.key, ok = provider.ExtractString(t["team_key"]); !ok {
		return g, missing("team_key")
	}
	if g.name, ok = provider.ExtractString(t["name"]); !ok {
		return g, missing("name")
	}
	if g.points, ok = provider.ExtractValue(provider.First(t, []string{"team_points", "total"}, []string{"points"})); !ok {
		return g, missing("team_points.total")
	}
	if home, ok := provider.ExtractBool(t["is_home"]); ok {
		g.isHome = &home
	}
	return g, nil
}

// parseGame validates one matchup and returns it from both participants'
// perspectives. A game is all-or-nothing: if either side is defective,
// neither row is emitted.
func parseGame(season, week int, raw interface{}) ([2]table.Matchup, error) {
	var rows [2]table.Matchup
	g, ok := raw.(map[string]interface{})
	if !ok {
		return rows, missing("matchup object")
	}
	teams := provider.First(g, []string{"teams"}, []string{"0", "teams"})
	list, ok := teams.([]interface{})
	if !ok || len(list) != 2 {
		return rows, missing("teams (need exactly two)")
	}
	a, err := parseGameTeam(list[0])
	if err != nil {
		return rows, err
	}
	b, err := parseGameTeam(list[1])
	if err != nil {
		return rows, err
	}
	if a.key == b.key {
		return rows, fmt.Errorf("%w: team plays itself (%s)", errMissing, a.key)
	}

	rows[0] = table.Matchup{
		Season: season, Week: week,
		TeamKey: a.key, TeamName: a.name,
		OppKey: b.key, OppName: b.name,
		PtsFor: a.points, PtsAgainst: b.points,
		IsHome: a.isHome,
	}
	rows[1] = table.Matchup{
		Season: season, Week: week,
		TeamKey: b.key, TeamName: b.name,
		OppKey: a.key, OppName: a.name,
		PtsFor: b.points, PtsAgainst: a.points,
		IsHome: b.isHome,
	}
	return rows, nil
}
