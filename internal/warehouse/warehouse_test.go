package warehouse

import (
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fantasy-history/internal/metrics"
	"github.com/albapepper/fantasy-history/internal/table"
)

func sampleInputs() metrics.Inputs {
	home := true
	return metrics.Inputs{
		Seasons: []table.Season{{Season: 2023, LeagueKey: "423.l.1", LeagueName: "Dynasty", NumWeeks: 1, NumTeams: 2}},
		Standings: []table.Standing{
			{Season: 2023, TeamKey: "k.a", TeamName: "Team A", Manager: "Alice", Rank: 1, Wins: 1, PointsFor: 120, PointsAgainst: 100},
			{Season: 2023, TeamKey: "k.b", TeamName: "Team B", Manager: "Bob", Rank: 2, Losses: 1, PointsFor: 100, PointsAgainst: 120},
		},
		Matchups: []table.Matchup{
			{Season: 2023, Week: 1, TeamKey: "k.a", TeamName: "Team A", OppKey: "k.b", OppName: "Team B", PtsFor: 120, PtsAgainst: 100, IsHome: &home},
			{Season: 2023, Week: 1, TeamKey: "k.b", TeamName: "Team B", OppKey: "k.a", OppName: "Team A", PtsFor: 100, PtsAgainst: 120},
		},
	}
}

func TestBuildSources(t *testing.T) {
	in := sampleInputs()
	sources := buildSources(in, metrics.Compute(in))

	var names []string
	for _, src := range sources {
		names = append(names, src.table)
		for _, row := range src.rows {
			assert.Len(t, row, len(src.columns), src.table)
		}
	}
	assert.Equal(t, tableOrder, names)

	byName := make(map[string]copySource, len(sources))
	for _, src := range sources {
		byName[src.table] = src
	}
	assert.Len(t, byName["seasons"].rows, 1)
	assert.Len(t, byName["standings"].rows, 2)
	assert.Len(t, byName["all_time"].rows, 2)

	matchups := byName["matchups"].rows
	require.Len(t, matchups, 2)
	assert.Equal(t, true, matchups[0][8])
	assert.Nil(t, matchups[1][8], "unknown is_home loads as NULL")

	champions := byName["champions"].rows
	require.Len(t, champions, 2)
	assert.Equal(t, []interface{}{2023, "champion", "Team A", "Alice"}, champions[0])
	assert.Equal(t, []interface{}{2023, "runner_up", "Team B", "Bob"}, champions[1])
}

func TestBuildSources_Empty(t *testing.T) {
	sources := buildSources(metrics.Inputs{}, metrics.Compute(metrics.Inputs{}))
	require.Len(t, sources, len(tableOrder))
	for _, src := range sources {
		assert.Empty(t, src.rows, src.table)
	}
}

func TestResult_Summary(t *testing.T) {
	r := &Result{Rows: map[string]int64{"standings": 20, "matchups": 260, "champions": 4}}
	assert.Equal(t, "seasons=0 standings=20 matchups=260 all_time=0 champions=4", r.Summary())
}

func TestMigrations_Embedded(t *testing.T) {
	goose.SetBaseFS(migrations)
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	found, err := goose.CollectMigrations("migrations", 0, goose.MaxVersion)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].Version)
}
