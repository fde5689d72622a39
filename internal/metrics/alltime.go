package metrics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/albapepper/fantasy-history/internal/table"
)

// Aggregate is one franchise's cumulative record. A franchise is a
// (team name, manager) pair, so a rename or a change of manager starts a
// new row.
type Aggregate struct {
	TeamName string  `json:"team_name"`
	Manager  string  `json:"manager"`
	Seasons  int     `json:"seasons"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Ties     int     `json:"ties"`
	PF       float64 `json:"pf"`
	PA       float64 `json:"pa"`
	Titles   int     `json:"titles"`
	Games    int     `json:"games"`
	WinPct   float64 `json:"win_pct"`
}

type franchise struct {
	team, manager string
}

// AllTime groups standings by (team name, manager) and sums them. Rows are
// ordered by titles, win percentage and points for (all descending), then
// team name and manager.
func AllTime(standings []table.Standing) []Aggregate {
	type acc struct {
		Aggregate
		seasons map[int]bool
		pf, pa  decimal.Decimal
	}
	groups := make(map[franchise]*acc)
	var order []franchise

	for _, s := range standings {
		key := franchise{s.TeamName, s.Manager}
		a, ok := groups[key]
		if !ok {
			a = &acc{
				Aggregate: Aggregate{TeamName: s.TeamName, Manager: s.Manager},
				seasons:   make(map[int]bool),
			}
			groups[key] = a
			order = append(order, key)
		}
		a.seasons[s.Season] = true
		a.Wins += s.Wins
		a.Losses += s.Losses
		a.Ties += s.Ties
		a.pf = a.pf.Add(decimal.NewFromFloat(s.PointsFor))
		a.pa = a.pa.Add(decimal.NewFromFloat(s.PointsAgainst))
		if s.Rank == 1 {
			a.Titles++
		}
	}

	out := make([]Aggregate, 0, len(order))
	for _, key := range order {
		a := groups[key]
		a.Seasons = len(a.seasons)
		a.Games = a.Wins + a.Losses + a.Ties
		a.PF = a.pf.Round(2).InexactFloat64()
		a.PA = a.pa.Round(2).InexactFloat64()
		a.WinPct = WinPct(a.Wins, a.Games)
		out = append(out, a.Aggregate)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Titles != b.Titles {
			return a.Titles > b.Titles
		}
		if a.WinPct != b.WinPct {
			return a.WinPct > b.WinPct
		}
		if a.PF != b.PF {
			return a.PF > b.PF
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.Manager < b.Manager
	})
	return out
}

// WinPct returns 100*wins/games rounded to two decimals, or 0 when no games
// were played.
func WinPct(wins, games int) float64 {
	if games <= 0 {
		return 0
	}
	pct := decimal.NewFromInt(int64(wins)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(games)), 2)
	return pct.InexactFloat64()
}
