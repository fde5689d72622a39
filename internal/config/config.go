// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/history and cmd/preview.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/albapepper/fantasy-history/internal/yahoo"
)

// --------------------------------------------------------------------------
// Filesystem layout: every stage's inputs and outputs
// --------------------------------------------------------------------------

const (
	StandingsTableFile = "standings_by_season.csv"
	MatchupsTableFile  = "matchups.csv"
	SeasonsTableFile   = "season_settings.csv"

	ChampionsFile = "champions.json"
	RunnerUpsFile = "runnerups.json"
	AllTimeFile   = "all_time.json"
	RecordsFile   = "records.json"
	SeasonsFile   = "seasons.json"

	LeagueKeysFile = "league_keys.json"
)

// Paths is the on-disk layout of the pipeline.
type Paths struct {
	RawDir       string // data/raw/{season}/*.json
	ProcessedDir string // data/processed/*.csv
	SiteDataDir  string // site_data/*.json
	ReportsDir   string // reports/*.html
	ReportsCSV   string // reports/csv/*.csv
}

// StandingsTable returns the path of the normalized standings table.
func (p Paths) StandingsTable() string {
	return filepath.Join(p.ProcessedDir, StandingsTableFile)
}

// MatchupsTable returns the path of the normalized matchup table.
func (p Paths) MatchupsTable() string {
	return filepath.Join(p.ProcessedDir, MatchupsTableFile)
}

// SeasonsTable returns the path of the season settings table.
func (p Paths) SeasonsTable() string {
	return filepath.Join(p.ProcessedDir, SeasonsTableFile)
}

// SiteData returns the path of a public metrics file.
func (p Paths) SiteData(name string) string {
	return filepath.Join(p.SiteDataDir, name)
}

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// League
	LeagueKey    string
	LeagueID     string
	GameCode     string
	RequestDelay time.Duration

	// Upstream API
	APIBaseURL  string
	AuthURL     string
	TokenURL    string
	HTTPTimeout time.Duration

	// Credentials (never committed)
	OAuthFile string
	TokenFile string

	// Filesystem
	DataDir     string
	SiteDataDir string
	ReportsDir  string

	// Warehouse export
	DatabaseURL    string
	DBPoolMaxConns int

	// Preview server
	PreviewHost       string
	PreviewPort       int
	CORSAllowOrigins  []string
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CacheEnabled      bool

	LogLevel slog.Level
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		LeagueKey:    envOr("YAHOO_LEAGUE_KEY", "nfl.l.123456"),
		LeagueID:     envOr("YAHOO_LEAGUE_ID", ""),
		GameCode:     envOr("YAHOO_GAME_CODE", "nfl"),
		RequestDelay: time.Duration(envInt("PULL_SLEEP_MS", 300)) * time.Millisecond,

		APIBaseURL:  envOr("YAHOO_API_BASE_URL", "https://fantasysports.yahooapis.com/fantasy/v2"),
		AuthURL:     envOr("YAHOO_AUTH_URL", "https://api.login.yahoo.com/oauth2/request_auth"),
		TokenURL:    envOr("YAHOO_TOKEN_URL", "https://api.login.yahoo.com/oauth2/get_token"),
		HTTPTimeout: envDuration("HTTP_TIMEOUT", 30*time.Second),

		OAuthFile: envOr("OAUTH_FILE", "oauth2.json"),
		TokenFile: envOr("TOKEN_FILE", "token.json"),

		DataDir:     envOr("DATA_DIR", "data"),
		SiteDataDir: envOr("SITE_DATA_DIR", "site_data"),
		ReportsDir:  envOr("REPORTS_DIR", "reports"),

		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 4),

		PreviewHost: envOr("PREVIEW_HOST", "127.0.0.1"),
		PreviewPort: envInt("PREVIEW_PORT", envInt("PORT", 8000)),
		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:4321",
			"http://localhost:5173",
		}),
		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
		CacheEnabled:      envBool("CACHE_ENABLED", true),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),
	}

	if cfg.RequestDelay < 0 {
		return nil, fmt.Errorf("PULL_SLEEP_MS must not be negative")
	}
	if strings.TrimSpace(cfg.LeagueKey) == "" {
		return nil, fmt.Errorf("YAHOO_LEAGUE_KEY must not be empty")
	}
	return cfg, nil
}

// Paths returns the pipeline layout rooted at the configured directories.
func (c *Config) Paths() Paths {
	return Paths{
		RawDir:       filepath.Join(c.DataDir, "raw"),
		ProcessedDir: filepath.Join(c.DataDir, "processed"),
		SiteDataDir:  c.SiteDataDir,
		ReportsDir:   c.ReportsDir,
		ReportsCSV:   filepath.Join(c.ReportsDir, "csv"),
	}
}

// Puller returns the explicit configuration handed to the raw puller.
func (c *Config) Puller() yahoo.PullerConfig {
	return yahoo.PullerConfig{
		LeagueKey:    c.LeagueKey,
		RequestDelay: c.RequestDelay,
		RawDir:       c.Paths().RawDir,
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
