package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/fantasy-history/internal/table"
)

func sorted(rows []table.Matchup) []table.Matchup {
	table.SortMatchups(rows)
	return rows
}

func TestComputeRecords_Margin(t *testing.T) {
	rec := ComputeRecords(sorted(game(2022, 3, "Team B", 180.0, "Team C", 107.9)))

	require.NotNil(t, rec.SingleWeekMargin)
	assert.Equal(t, Margin{
		Season: 2022, Week: 3,
		TeamName: "Team B", OppName: "Team C",
		Margin: 72.1, PtsFor: 180.0, PtsAgainst: 107.9,
	}, *rec.SingleWeekMargin)

	require.NotNil(t, rec.SingleWeekHigh)
	assert.Equal(t, 180.0, rec.SingleWeekHigh.Points)
	assert.Equal(t, "Team B", rec.SingleWeekHigh.TeamName)
}

func TestComputeRecords_TiesGoToEarliest(t *testing.T) {
	rec := ComputeRecords(sorted(games(
		game(2023, 5, "Late", 150, "Other", 100),
		game(2021, 9, "Early", 150, "Other", 100),
		game(2021, 9, "Zulu", 150, "Yank", 100),
	)))

	require.NotNil(t, rec.SingleWeekHigh)
	assert.Equal(t, "Early", rec.SingleWeekHigh.TeamName)
	assert.Equal(t, 2021, rec.SingleWeekHigh.Season)

	require.NotNil(t, rec.SingleWeekMargin)
	assert.Equal(t, "Early", rec.SingleWeekMargin.TeamName)
}

func TestComputeRecords_OnlyTiesHaveNoMargin(t *testing.T) {
	rec := ComputeRecords(sorted(game(2020, 1, "A", 99.5, "B", 99.5)))
	assert.Nil(t, rec.SingleWeekMargin)
	assert.Nil(t, rec.LongestWinStreak)
	require.NotNil(t, rec.SingleWeekHigh)
	assert.Equal(t, 99.5, rec.SingleWeekHigh.Points)
}

func TestResult(t *testing.T) {
	tests := []struct {
		name   string
		pf, pa float64
		want   Outcome
	}{
		{"win", 101, 100, Win},
		{"loss", 100, 101, Loss},
		{"exact tie", 100, 100, Tie},
		{"float noise tie", 0.1 + 0.2, 0.3, Tie},
		{"scoreless", 0, 0, Tie},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Result(table.Matchup{PtsFor: tt.pf, PtsAgainst: tt.pa}))
		})
	}
}

func TestLongestStreak_CarriesAcrossSeasons(t *testing.T) {
	rows := games(
		game(2022, 12, "Team A", 90, "Team B", 100),
		game(2022, 13, "Team A", 110, "Team B", 100),
		game(2022, 14, "Team A", 120, "Team B", 100),
		game(2023, 1, "Team A", 130, "Team B", 100),
		game(2023, 2, "Team A", 140, "Team B", 100),
		game(2023, 3, "Team A", 80, "Team B", 100),
	)

	got := LongestStreak(rows)
	require.NotNil(t, got)
	assert.Equal(t, Streak{
		TeamName: "Team A", Length: 4,
		Season: 2023, Week: 2,
		StartSeason: 2022, StartWeek: 13,
	}, *got)
}

func TestLongestStreak_LossAtSeasonBoundaryResets(t *testing.T) {
	rows := games(
		game(2022, 13, "Team A", 110, "Team B", 100),
		game(2022, 14, "Team A", 90, "Team B", 100),
		game(2023, 1, "Team A", 130, "Team B", 100),
	)
	streaks := TeamStreaks(rows)
	require.Len(t, streaks, 2)
	for _, s := range streaks {
		assert.Equal(t, 1, s.Length, s.TeamName)
	}
	assert.Equal(t, "Team A", streaks[0].TeamName, "earliest completion wins the tie")
}

func TestLongestStreak_TieEndsStreak(t *testing.T) {
	rows := games(
		game(2020, 1, "A", 110, "B", 100),
		game(2020, 2, "A", 110, "B", 100),
		game(2020, 3, "A", 100, "B", 100),
		game(2020, 4, "A", 110, "B", 100),
	)
	got := LongestStreak(rows)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Length)
	assert.Equal(t, 2, got.Week)
}

func TestLongestStreak_ByeWeekDoesNotBreak(t *testing.T) {
	rows := games(
		game(2020, 1, "A", 110, "B", 100),
		game(2020, 2, "C", 110, "D", 100),
		game(2020, 3, "A", 110, "C", 100),
	)
	streaks := TeamStreaks(rows)
	require.NotEmpty(t, streaks)
	assert.Equal(t, "A", streaks[0].TeamName)
	assert.Equal(t, 2, streaks[0].Length)
}

func TestTeamStreaks_OrderedByLengthThenCompletion(t *testing.T) {
	rows := games(
		game(2020, 1, "Beta", 110, "Gamma", 100),
		game(2020, 1, "Alpha", 110, "Delta", 100),
		game(2020, 2, "Beta", 110, "Alpha", 100),
	)
	streaks := TeamStreaks(rows)
	var names []string
	for _, s := range streaks {
		names = append(names, s.TeamName)
	}
	assert.Equal(t, []string{"Beta", "Alpha"}, names)
	assert.Equal(t, 2, streaks[0].Length)
}
