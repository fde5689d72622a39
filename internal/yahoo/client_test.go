package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoreboardJSON = `{"fantasy_content": {"league": [
	{"league_key": "423.l.1", "season": "2023"},
	{"scoreboard": {
		"0": {"matchups": {
			"0": {"matchup": {
				"week": "1",
				"0": {"teams": {
					"0": {"team": [[{"team_key": "423.l.1.t.1"}, {"name": "Team A"}], {"team_points": {"total": "100.5"}}]},
					"1": {"team": [[{"team_key": "423.l.1.t.2"}, {"name": "Team B"}], {"team_points": {"total": "90"}}]},
					"count": 2
				}}
			}},
			"count": 1
		}},
		"week": "1"
	}}
]}}`

// staticToken is a TokenSource that always returns the same token.
type staticToken string

func (s staticToken) AccessToken(context.Context) (string, error) { return string(s), nil }

func newTestClient(t *testing.T, handler http.HandlerFunc, delay time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", staticToken("tok"), delay, 5*time.Second, nil)
}

func TestClient_Scoreboard(t *testing.T) {
	var gotPath, gotAuth, gotFormat string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotFormat = r.URL.Query().Get("format")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(scoreboardJSON))
	}, 0)

	games, err := c.Scoreboard(context.Background(), "423.l.1", 1)
	require.NoError(t, err)

	assert.Equal(t, "/league/423.l.1/scoreboard;week=1", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "json", gotFormat)

	require.Len(t, games, 1)
	g := games[0].(map[string]interface{})
	assert.Equal(t, "1", g["week"])
	assert.NotContains(t, g, "0")
	teams := g["teams"].([]interface{})
	require.Len(t, teams, 2)
	a := teams[0].(map[string]interface{})
	assert.Equal(t, "423.l.1.t.1", a["team_key"])
	assert.Equal(t, "Team A", a["name"])
	assert.Equal(t, map[string]interface{}{"total": "100.5"}, a["team_points"])
}

func TestClient_APIErrorKeepsBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"description":"token_expired"}}`))
	}, 0)

	_, err := c.LeagueMetadata(context.Background(), "423.l.1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.True(t, apiErr.IsAuth())
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), `{"error":{"description":"token_expired"}}`)
}

func TestClient_PacesRequests(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fantasy_content": {"league": [{"league_key": "423.l.1"}]}}`))
	}, 50*time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.LeagueMetadata(context.Background(), "423.l.1")
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fantasy_content": {}}`))
	}, time.Hour)

	// The first request consumes the only token.
	_, _ = c.LeagueMetadata(context.Background(), "423.l.1")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.LeagueMetadata(ctx, "423.l.1")
	require.Error(t, err)
}

func TestClient_UserLeagues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fantasy_content": {"users": {"0": {"user": [
			{"guid": "abc"},
			{"games": {"0": {"game": [
				{"game_key": "423", "code": "nfl"},
				{"leagues": {
					"0": {"league": [{"league_key": "423.l.55", "league_id": "55", "season": "2023"}]},
					"1": {"league": [{"league_key": "423.l.77", "league_id": "77", "season": "2023"}]},
					"count": 2
				}}
			]}, "count": 1}}
		]}, "count": 1}}}`))
	}, 0)

	leagues, err := c.UserLeagues(context.Background(), "nfl")
	require.NoError(t, err)
	require.Len(t, leagues, 2)
	key, ok := FindLeagueKey(leagues, "77")
	assert.True(t, ok)
	assert.Equal(t, "423.l.77", key)
}
