package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"YAHOO_LEAGUE_KEY", "PULL_SLEEP_MS", "DATA_DIR", "LOG_LEVEL", "CORS_ALLOW_ORIGINS", "PREVIEW_PORT", "PORT"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nfl.l.123456", cfg.LeagueKey)
	assert.Equal(t, 300*time.Millisecond, cfg.RequestDelay)
	assert.Equal(t, 8000, cfg.PreviewPort)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Len(t, cfg.CORSAllowOrigins, 3)
	assert.True(t, cfg.CacheEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("YAHOO_LEAGUE_KEY", "423.l.99")
	t.Setenv("PULL_SLEEP_MS", "0")
	t.Setenv("DATA_DIR", "/tmp/league")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("PREVIEW_PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "423.l.99", cfg.LeagueKey)
	assert.Zero(t, cfg.RequestDelay)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.True(t, cfg.RateLimitEnabled)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 8000, cfg.PreviewPort, "unparseable values fall back")

	paths := cfg.Paths()
	assert.Equal(t, filepath.Join("/tmp/league", "raw"), paths.RawDir)
	assert.Equal(t, filepath.Join("/tmp/league", "processed", "matchups.csv"), paths.MatchupsTable())

	pc := cfg.Puller()
	assert.Equal(t, "423.l.99", pc.LeagueKey)
	assert.Equal(t, paths.RawDir, pc.RawDir)
}

func TestLoad_NegativeDelay(t *testing.T) {
	t.Setenv("PULL_SLEEP_MS", "-1")
	_, err := Load()
	assert.ErrorContains(t, err, "PULL_SLEEP_MS")
}

func TestPaths(t *testing.T) {
	p := Paths{ProcessedDir: "data/processed", SiteDataDir: "site_data"}
	assert.Equal(t, filepath.Join("data/processed", StandingsTableFile), p.StandingsTable())
	assert.Equal(t, filepath.Join("data/processed", SeasonsTableFile), p.SeasonsTable())
	assert.Equal(t, filepath.Join("site_data", RecordsFile), p.SiteData(RecordsFile))
}
