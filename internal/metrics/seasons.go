package metrics

import (
	"sort"

	"github.com/albapepper/fantasy-history/internal/table"
)

// SeasonPage is everything the site shows for one season.
type SeasonPage struct {
	Season      int              `json:"season"`
	LeagueName  string           `json:"league_name"`
	NumTeams    int              `json:"num_teams"`
	NumWeeks    int              `json:"num_weeks"`
	ScoringType string           `json:"scoring_type"`
	Champion    *Finish          `json:"champion"`
	RunnerUp    *Finish          `json:"runner_up"`
	Standings   []table.Standing `json:"standings"`
	Weeks       []Week           `json:"weeks"`
}

// Week is one scoring period's games.
type Week struct {
	Week  int    `json:"week"`
	Games []Game `json:"games"`
}

// Game is one matchup listed once. The home team is listed first when
// known, otherwise the team whose name sorts first.
type Game struct {
	TeamName string  `json:"team_name"`
	TeamPts  float64 `json:"team_pts"`
	OppName  string  `json:"opp_name"`
	OppPts   float64 `json:"opp_pts"`
	Winner   string  `json:"winner"` // empty for a tie
}

// SeasonPages builds one page per season present in any table, in season
// order. standings and matchups must already be sorted.
func SeasonPages(seasons []table.Season, standings []table.Standing, matchups []table.Matchup) []SeasonPage {
	pages := make(map[int]*SeasonPage)
	page := func(season int) *SeasonPage {
		p, ok := pages[season]
		if !ok {
			p = &SeasonPage{Season: season, Standings: []table.Standing{}, Weeks: []Week{}}
			pages[season] = p
		}
		return p
	}

	for _, s := range seasons {
		p := page(s.Season)
		p.LeagueName = s.LeagueName
		p.NumTeams = s.NumTeams
		p.NumWeeks = s.NumWeeks
		p.ScoringType = s.ScoringType
	}
	for _, s := range standings {
		p := page(s.Season)
		p.Standings = append(p.Standings, s)
		f := &Finish{Season: s.Season, TeamName: s.TeamName, Manager: s.Manager}
		switch {
		case s.Rank == 1 && p.Champion == nil:
			p.Champion = f
		case s.Rank == 2 && p.RunnerUp == nil:
			p.RunnerUp = f
		}
	}

	type pairKey struct {
		season, week int
		a, b         string
	}
	seen := make(map[pairKey]bool)
	for _, m := range matchups {
		a, b := m.TeamKey, m.OppKey
		if b < a {
			a, b = b, a
		}
		key := pairKey{m.Season, m.Week, a, b}
		if seen[key] {
			continue
		}
		seen[key] = true
		addGame(page(m.Season), m.Week, gameFrom(m))
	}

	out := make([]SeasonPage, 0, len(pages))
	for _, p := range pages {
		sort.SliceStable(p.Weeks, func(i, j int) bool { return p.Weeks[i].Week < p.Weeks[j].Week })
		for _, w := range p.Weeks {
			sort.SliceStable(w.Games, func(i, j int) bool { return w.Games[i].TeamName < w.Games[j].TeamName })
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Season < out[j].Season })
	return out
}

func gameFrom(m table.Matchup) Game {
	g := Game{TeamName: m.TeamName, TeamPts: m.PtsFor, OppName: m.OppName, OppPts: m.PtsAgainst}
	homeKnown := m.IsHome != nil
	if (homeKnown && !*m.IsHome) || (!homeKnown && m.OppName < m.TeamName) {
		g = Game{TeamName: m.OppName, TeamPts: m.PtsAgainst, OppName: m.TeamName, OppPts: m.PtsFor}
	}
	switch Result(m) {
	case Win:
		g.Winner = m.TeamName
	case Loss:
		g.Winner = m.OppName
	}
	return g
}

// addGame appends g to its week. Matchups arrive in week order, so only the
// last week needs checking.
func addGame(p *SeasonPage, week int, g Game) {
	if n := len(p.Weeks); n == 0 || p.Weeks[n-1].Week != week {
		p.Weeks = append(p.Weeks, Week{Week: week})
	}
	last := &p.Weeks[len(p.Weeks)-1]
	last.Games = append(last.Games, g)
}
