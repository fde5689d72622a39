// Package warehouse exports the processed tables and metrics into
// Postgres. Every load replaces the previous contents in one transaction,
// so the warehouse always matches exactly one pipeline run.
package warehouse

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/albapepper/fantasy-history/internal/metrics"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return migrate(ctx, db)
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Result counts the rows loaded per table.
type Result struct {
	Rows map[string]int64
}

// Summary returns a human-readable summary of the load.
func (r *Result) Summary() string {
	s := ""
	for _, t := range tableOrder {
		if s != "" {
			s += " "
		}
		s += fmt.Sprintf("%s=%d", t, r.Rows[t])
	}
	return s
}

var tableOrder = []string{"seasons", "standings", "matchups", "all_time", "champions"}

// copySource is one table's full contents.
type copySource struct {
	table   string
	columns []string
	rows    [][]interface{}
}

// Load truncates every warehouse table and copies in the given data.
func Load(ctx context.Context, pool *pgxpool.Pool, in metrics.Inputs, report *metrics.Report, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	sources := buildSources(in, report)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE seasons, standings, matchups, all_time, champions"); err != nil {
		return nil, fmt.Errorf("truncate warehouse: %w", err)
	}

	result := &Result{Rows: make(map[string]int64, len(sources))}
	for _, src := range sources {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{src.table}, src.columns, pgx.CopyFromRows(src.rows))
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", src.table, err)
		}
		result.Rows[src.table] = n
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit load: %w", err)
	}
	logger.Info("Warehouse loaded",
		"duration", time.Since(start).Round(time.Millisecond),
		"summary", result.Summary())
	return result, nil
}

// buildSources converts the tables and report into COPY rows, in
// tableOrder.
func buildSources(in metrics.Inputs, report *metrics.Report) []copySource {
	seasons := make([][]interface{}, 0, len(in.Seasons))
	for _, s := range in.Seasons {
		seasons = append(seasons, []interface{}{
			s.Season, s.LeagueKey, s.LeagueName, s.NumWeeks, s.NumTeams, s.ScoringType,
		})
	}

	standings := make([][]interface{}, 0, len(in.Standings))
	for _, s := range in.Standings {
		standings = append(standings, []interface{}{
			s.Season, s.LeagueKey, s.TeamKey, s.TeamName, s.Manager,
			s.Wins, s.Losses, s.Ties, s.Rank, s.PointsFor, s.PointsAgainst,
		})
	}

	matchups := make([][]interface{}, 0, len(in.Matchups))
	for _, m := range in.Matchups {
		var home interface{}
		if m.IsHome != nil {
			home = *m.IsHome
		}
		matchups = append(matchups, []interface{}{
			m.Season, m.Week, m.TeamKey, m.TeamName, m.OppKey, m.OppName,
			m.PtsFor, m.PtsAgainst, home,
		})
	}

	allTime := make([][]interface{}, 0, len(report.AllTime))
	for _, a := range report.AllTime {
		allTime = append(allTime, []interface{}{
			a.TeamName, a.Manager, a.Seasons, a.Wins, a.Losses, a.Ties,
			a.PF, a.PA, a.Titles, a.Games, a.WinPct,
		})
	}

	champions := make([][]interface{}, 0, len(report.Champions)+len(report.RunnerUps))
	for _, c := range report.Champions {
		champions = append(champions, []interface{}{c.Season, "champion", c.TeamName, c.Manager})
	}
	for _, c := range report.RunnerUps {
		champions = append(champions, []interface{}{c.Season, "runner_up", c.TeamName, c.Manager})
	}

	return []copySource{
		{"seasons", []string{"season", "league_key", "league_name", "num_weeks", "num_teams", "scoring_type"}, seasons},
		{"standings", []string{
			"season", "league_key", "team_key", "team_name", "manager",
			"wins", "losses", "ties", "rank", "points_for", "points_against",
		}, standings},
		{"matchups", []string{
			"season", "week", "team_key", "team_name", "opp_key", "opp_name",
			"pts_for", "pts_against", "is_home",
		}, matchups},
		{"all_time", []string{
			"team_name", "manager", "seasons", "wins", "losses", "ties",
			"pf", "pa", "titles", "games", "win_pct",
		}, allTime},
		{"champions", []string{"season", "role", "team_name", "manager"}, champions},
	}
}
