package yahoo

import (
	"context"
	"fmt"
)

// LeagueMetadata returns the league's metadata object (name, season,
// league_key, renew, ...).
func (c *Client) LeagueMetadata(ctx context.Context, leagueKey string) (map[string]interface{}, error) {
	return c.league(ctx, leagueKey, "metadata")
}

// Settings returns the league metadata merged with its "settings" object
// (end_week, scoring_type, roster positions, stat categories, ...).
func (c *Client) Settings(ctx context.Context, leagueKey string) (map[string]interface{}, error) {
	return c.league(ctx, leagueKey, "settings")
}

// Standings returns one object per team with team_points and team_standings.
func (c *Client) Standings(ctx context.Context, leagueKey string) ([]interface{}, error) {
	lg, err := c.league(ctx, leagueKey, "standings")
	if err != nil {
		return nil, err
	}
	st, ok := child(lg, "standings")
	if !ok {
		return nil, fmt.Errorf("standings %s: no standings object", leagueKey)
	}
	return unwrapList(st["teams"], "team"), nil
}

// Scoreboard returns the week's matchups; each carries a "teams" list of two
// team objects with team_points.
func (c *Client) Scoreboard(ctx context.Context, leagueKey string, week int) ([]interface{}, error) {
	lg, err := c.league(ctx, leagueKey, fmt.Sprintf("scoreboard;week=%d", week))
	if err != nil {
		return nil, err
	}
	sb, ok := child(lg, "scoreboard")
	if !ok {
		return nil, fmt.Errorf("scoreboard %s week %d: no scoreboard object", leagueKey, week)
	}
	holder := sb
	if inner, ok := child(sb, "0"); ok {
		holder = inner
	}
	matchups := unwrapList(holder["matchups"], "matchup")
	for _, m := range matchups {
		if mm, ok := m.(map[string]interface{}); ok {
			liftIndexed(mm, "teams", "team")
		}
	}
	return matchups, nil
}

// DraftResults returns one object per pick.
func (c *Client) DraftResults(ctx context.Context, leagueKey string) ([]interface{}, error) {
	lg, err := c.league(ctx, leagueKey, "draftresults")
	if err != nil {
		return nil, err
	}
	return unwrapList(lg["draft_results"], "draft_result"), nil
}

// Teams returns one object per team in the league.
func (c *Client) Teams(ctx context.Context, leagueKey string) ([]interface{}, error) {
	lg, err := c.league(ctx, leagueKey, "teams")
	if err != nil {
		return nil, err
	}
	return unwrapList(lg["teams"], "team"), nil
}

// Roster returns a team's roster object with a "players" list.
func (c *Client) Roster(ctx context.Context, teamKey string) (map[string]interface{}, error) {
	content, err := c.get(ctx, "/team/"+teamKey+"/roster")
	if err != nil {
		return nil, err
	}
	team, ok := child(content, "team")
	if !ok {
		return nil, fmt.Errorf("roster %s: no team object", teamKey)
	}
	roster, ok := child(team, "roster")
	if !ok {
		return nil, fmt.Errorf("roster %s: no roster object", teamKey)
	}
	liftIndexed(roster, "players", "player")
	return roster, nil
}

// Transactions returns the league's adds, drops and trades.
func (c *Client) Transactions(ctx context.Context, leagueKey string) ([]interface{}, error) {
	lg, err := c.league(ctx, leagueKey, "transactions")
	if err != nil {
		return nil, err
	}
	return unwrapList(lg["transactions"], "transaction"), nil
}

// UserLeagues returns every league the logged-in user belongs to for a game
// code ("nfl"), across all seasons Yahoo still lists.
func (c *Client) UserLeagues(ctx context.Context, gameCode string) ([]map[string]interface{}, error) {
	content, err := c.get(ctx, "/users;use_login=1/games;game_codes="+gameCode+"/leagues")
	if err != nil {
		return nil, err
	}
	var out []map[string]interface{}
	for _, u := range unwrapList(content["users"], "user") {
		user, ok := u.(map[string]interface{})
		if !ok {
			continue
		}
		for _, g := range unwrapList(user["games"], "game") {
			game, ok := g.(map[string]interface{})
			if !ok {
				continue
			}
			for _, l := range unwrapList(game["leagues"], "league") {
				if lg, ok := l.(map[string]interface{}); ok {
					out = append(out, lg)
				}
			}
		}
	}
	return out, nil
}

func (c *Client) league(ctx context.Context, leagueKey, resource string) (map[string]interface{}, error) {
	content, err := c.get(ctx, "/league/"+leagueKey+"/"+resource)
	if err != nil {
		return nil, err
	}
	lg, ok := child(content, "league")
	if !ok {
		return nil, fmt.Errorf("%s %s: no league object", resource, leagueKey)
	}
	return lg, nil
}

// liftIndexed moves m["0"][key] up to m[key] (unwrapping each entry) for the
// objects where Yahoo mixes an index entry with named fields.
func liftIndexed(m map[string]interface{}, key, entry string) {
	if _, ok := m[key]; ok {
		m[key] = unwrapList(m[key], entry)
		return
	}
	inner, ok := child(m, "0")
	if !ok {
		return
	}
	if v, ok := inner[key]; ok {
		m[key] = unwrapList(v, entry)
		delete(m, "0")
	}
}
